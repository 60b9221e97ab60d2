// Package mcp exposes the memory system to MCP clients: chatting with
// memory, recalling stored context, pinning facts, and reading the cost
// ledger.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memvault/memvault/internal/chat"
	"github.com/memvault/memvault/internal/cost"
	"github.com/memvault/memvault/internal/db"
	"github.com/memvault/memvault/internal/memory"
)

// Server implements the MCP server for MemVault
type Server struct {
	chat      *chat.Service
	store     *db.Store
	longterm  *memory.LongTermStore
	analytics *cost.Analytics
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server
func NewServer(chatService *chat.Service, store *db.Store, longterm *memory.LongTermStore, analytics *cost.Analytics) *Server {
	s := &Server{
		chat:      chatService,
		store:     store,
		longterm:  longterm,
		analytics: analytics,
	}

	// Create MCP server with tools
	s.mcpServer = server.NewMCPServer(
		"MemVault",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// chat tool
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Send a message through the memory-augmented chat pipeline. The message is routed to a model by complexity and answered with context from the user's working, episodic, and long-term memory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose memory and API key to use",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation session. Omit to start a new one; the response returns the generated id.",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The message to send",
				},
			},
			Required: []string{"user_id", "message"},
		},
	}, s.handleChat)

	// recall tool
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "recall",
		Description: "Retrieve what the system remembers about a user: long-term facts nearest to the query plus recent conversation summaries.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose memory to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language description of what to recall",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum facts to return (default: 5)",
				},
			},
			Required: []string{"user_id", "query"},
		},
	}, s.handleRecall)

	// remember_fact tool
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "remember_fact",
		Description: "Pin a fact about the user directly into long-term memory, bypassing the extraction lifecycle. Re-saving an unchanged fact is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User the fact belongs to",
				},
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Fact key, e.g. 'name' or 'preferred_language'",
				},
				"value": map[string]interface{}{
					"type":        "string",
					"description": "Fact value",
				},
			},
			Required: []string{"user_id", "key", "value"},
		},
	}, s.handleRememberFact)

	// cost_report tool
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "cost_report",
		Description: "Aggregate cost analytics for a user: totals, savings from routing and memory, hit rate, and model usage.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose ledger to aggregate",
				},
			},
			Required: []string{"user_id"},
		},
	}, s.handleCostReport)
}

func parseParams(args interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		UserID    string `json:"user_id"`
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}

	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	resp, err := s.chat.Handle(ctx, chat.Request{
		UserID:    params.UserID,
		SessionID: params.SessionID,
		Message:   params.Message,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}

	result, _ := json.Marshal(resp)
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleRecall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		UserID     string `json:"user_id"`
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}

	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	if params.MaxResults <= 0 {
		params.MaxResults = 5
	}

	facts, err := s.longterm.Search(ctx, params.UserID, params.Query, params.MaxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search facts: %v", err)), nil
	}

	episodic, err := s.store.RecentEpisodic(ctx, params.UserID, 5)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load summaries: %v", err)), nil
	}

	summaries := make([]string, 0, len(episodic))
	for _, mem := range episodic {
		summaries = append(summaries, mem.Summary)
	}

	result, _ := json.Marshal(map[string]interface{}{
		"facts":            facts,
		"recent_summaries": summaries,
	})
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleRememberFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		UserID string `json:"user_id"`
		Key    string `json:"key"`
		Value  string `json:"value"`
	}

	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	if params.Key == "" || params.Value == "" {
		return mcp.NewToolResultError("key and value are required"), nil
	}

	if err := s.longterm.Save(ctx, params.UserID, map[string]any{params.Key: params.Value}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save fact: %v", err)), nil
	}

	result, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"message": "Fact stored",
	})
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleCostReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		UserID string `json:"user_id"`
	}

	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := s.analytics.Report(ctx, params.UserID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute analytics: %v", err)), nil
	}

	result, _ := json.Marshal(report)
	return mcp.NewToolResultText(string(result)), nil
}

// Serve starts the MCP server with stdio transport
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server for use with other transports (e.g., SSE)
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
