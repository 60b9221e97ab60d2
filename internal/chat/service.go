// Package chat runs the query pipeline: credential lookup, complexity
// routing, memory-context assembly across the three tiers, completion,
// cost logging, and the post-response memory lifecycle.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/memvault/memvault/internal/cost"
	"github.com/memvault/memvault/internal/llm"
	"github.com/memvault/memvault/internal/memory"
	"github.com/memvault/memvault/internal/models"
	"github.com/memvault/memvault/internal/router"
	"github.com/memvault/memvault/internal/tokens"
)

const (
	episodicRecallLimit = 3
	longTermTopK        = 3
)

// Credentials resolves a user's provider API key.
type Credentials interface {
	Get(ctx context.Context, userID string) (string, error)
}

// EpisodicReader is the episodic recall slice of the relational store.
type EpisodicReader interface {
	RecentEpisodic(ctx context.Context, userID string, limit int) ([]models.EpisodicMemory, error)
}

// LLM is the per-user inference surface: completion for the chat reply
// plus the distillation the lifecycle needs.
type LLM interface {
	Complete(ctx context.Context, modelID string, messages []llm.Message, maxTokens int) (string, error)
	memory.Distiller
}

// Request is one user query.
type Request struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Response is the reply plus the routing and cost accounting for the
// exchange.
type Response struct {
	Reply       string               `json:"response"`
	SessionID   string               `json:"session_id"`
	ModelUsed   string               `json:"model_used"`
	Complexity  router.Complexity    `json:"complexity"`
	MemoryHit   bool                 `json:"memory_hit"`
	MemoryLayer models.MemoryLayer   `json:"memory_layer_used"`
	Savings     router.SavingsReport `json:"routing_savings"`
	Cost        *models.CostRecord   `json:"cost"`
}

// Service owns the chat pipeline. All per-user state lives in the
// stores; the service itself is safe for concurrent use.
type Service struct {
	credentials Credentials
	working     *memory.WorkingStore
	episodic    EpisodicReader
	longterm    *memory.LongTermStore
	router      *router.Router
	tracker     *cost.Tracker
	lifecycle   *memory.Lifecycle

	// newLLM builds the inference client for one request from the
	// user's decrypted key.
	newLLM func(apiKey string) LLM
}

// NewService wires the pipeline. llmBaseURL points at the
// OpenAI-compatible provider.
func NewService(
	credentials Credentials,
	working *memory.WorkingStore,
	episodic EpisodicReader,
	longterm *memory.LongTermStore,
	rt *router.Router,
	tracker *cost.Tracker,
	lifecycle *memory.Lifecycle,
	llmBaseURL string,
) *Service {
	return &Service{
		credentials: credentials,
		working:     working,
		episodic:    episodic,
		longterm:    longterm,
		router:      rt,
		tracker:     tracker,
		lifecycle:   lifecycle,
		newLLM: func(apiKey string) LLM {
			return llm.NewClient(llmBaseURL, apiKey)
		},
	}
}

// SetLLMFactory overrides the inference client constructor. Test hook.
func (s *Service) SetLLMFactory(f func(apiKey string) LLM) {
	s.newLLM = f
}

// memoryContext is what the three tiers contributed to one query.
type memoryContext struct {
	workingTurns []models.Turn
	episodic     string
	longTerm     string
	layer        models.MemoryLayer
}

// Handle runs one query through the full pipeline. The memory lifecycle
// runs after the response is assembled; its failures are logged, never
// surfaced to the caller.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message must not be empty")
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id must not be empty")
	}
	if req.SessionID == "" {
		// Each session-less request starts a fresh conversation; the
		// response carries the id back so the caller can continue it.
		req.SessionID = uuid.NewString()
	}

	apiKey, err := s.credentials.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	client := s.newLLM(apiKey)

	profile, tier := s.router.Route(req.Message)

	mem, err := s.gatherContext(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := s.buildMessages(mem, req.Message)
	reply, err := client.Complete(ctx, profile.ModelID, messages, profile.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("complete chat: %w", err)
	}

	if _, err := s.working.Append(ctx, req.UserID, req.SessionID, models.Turn{Role: models.RoleUser, Content: req.Message}); err != nil {
		log.Printf("chat: append user turn for %s/%s: %v", req.UserID, req.SessionID, err)
	}
	if _, err := s.working.Append(ctx, req.UserID, req.SessionID, models.Turn{Role: models.RoleAssistant, Content: reply}); err != nil {
		log.Printf("chat: append assistant turn for %s/%s: %v", req.UserID, req.SessionID, err)
	}

	workingTokens := tokens.EstimateTurns(mem.workingTurns)
	episodicTokens := tokens.Estimate(mem.episodic)
	longTermTokens := tokens.Estimate(mem.longTerm)
	messageTokens := tokens.Estimate(req.Message)
	responseTokens := tokens.Estimate(reply)

	modelLabel := profile.Label
	if modelLabel == "" {
		modelLabel = profile.ModelID
	}

	rec, err := s.tracker.Log(ctx, cost.QueryCost{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		WorkingTokens:  workingTokens,
		EpisodicTokens: episodicTokens,
		LongTermTokens: longTermTokens,
		MessageTokens:  messageTokens,
		ResponseTokens: responseTokens,
		Profile:        profile,
		MemoryLayer:    mem.layer,
	})
	if err != nil {
		// The reply is already generated; losing one ledger row is
		// preferable to failing the exchange.
		log.Printf("chat: log cost for %s: %v", req.UserID, err)
		rec = &models.CostRecord{
			ModelUsed:       modelLabel,
			MemoryHit:       episodicTokens > 0 || longTermTokens > 0,
			MemoryLayerUsed: mem.layer,
		}
	}

	// Routing savings compare what this tier cost for the live part of
	// the prompt against the always-complex baseline; recalled episodic
	// and long-term context is excluded from both sides.
	savings := s.router.ComputeSavings(req.Message, workingTokens+messageTokens, responseTokens, modelLabel)

	s.lifecycle.Run(ctx, req.UserID, req.SessionID, client)

	return &Response{
		Reply:       reply,
		SessionID:   req.SessionID,
		ModelUsed:   modelLabel,
		Complexity:  tier,
		MemoryHit:   rec.MemoryHit,
		MemoryLayer: mem.layer,
		Savings:     savings,
		Cost:        rec,
	}, nil
}

// gatherContext pulls from all three tiers. Episodic and long-term
// recall are best-effort: a failed lookup degrades the context, it does
// not fail the query.
func (s *Service) gatherContext(ctx context.Context, req Request) (*memoryContext, error) {
	mem := &memoryContext{layer: models.LayerNone}

	turns, err := s.working.Read(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("read working memory: %w", err)
	}
	mem.workingTurns = turns

	episodics, err := s.episodic.RecentEpisodic(ctx, req.UserID, episodicRecallLimit)
	if err != nil {
		log.Printf("chat: episodic recall for %s: %v", req.UserID, err)
	} else if len(episodics) > 0 {
		var b strings.Builder
		b.WriteString("PAST CONVERSATION SUMMARIES:\n")
		for _, m := range episodics {
			fmt.Fprintf(&b, "- %s\n", m.Summary)
		}
		mem.episodic = b.String()
		mem.layer = models.LayerEpisodic
	}

	facts, err := s.longterm.Search(ctx, req.UserID, req.Message, longTermTopK)
	if err != nil {
		log.Printf("chat: long-term recall for %s: %v", req.UserID, err)
	} else if len(facts) > 0 {
		var b strings.Builder
		b.WriteString("WHAT I KNOW ABOUT YOU:\n")
		for _, fact := range facts {
			fmt.Fprintf(&b, "- %s\n", fact)
		}
		mem.longTerm = b.String()
		mem.layer = models.LayerLongTerm
	}

	return mem, nil
}

// buildMessages assembles the completion request: one system message
// carrying the memory context, the working turns verbatim, then the new
// user message.
func (s *Service) buildMessages(mem *memoryContext, userMessage string) []llm.Message {
	system := "You are a helpful assistant with memory of past conversations."
	if mem.longTerm != "" {
		system += "\n\n" + strings.TrimRight(mem.longTerm, "\n")
	}
	if mem.episodic != "" {
		system += "\n\n" + strings.TrimRight(mem.episodic, "\n")
	}

	messages := []llm.Message{{Role: "system", Content: system}}
	for _, turn := range mem.workingTurns {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})
	return messages
}
