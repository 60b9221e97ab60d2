package api

import (
	"encoding/json"
	"net/http"
)

// handleOpenAPISpec returns the OpenAPI 3.0 specification
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "MemVault API",
			"description": "Conversational backend with tiered memory (working, episodic, long-term), complexity-based model routing, and per-query cost accounting",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{
				"url":         "http://localhost:8000",
				"description": "Local development server",
			},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"operationId": "getHealth",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Server is healthy",
						},
					},
				},
			},
			"/ready": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Readiness check",
					"description": "Verifies the database is reachable",
					"operationId": "getReady",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Dependencies ready"},
						"503": map[string]interface{}{"description": "Dependencies not ready"},
					},
				},
			},
			"/api/chat": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Send a chat message",
					"description": "Routes the message by complexity, assembles memory context from all three tiers, completes, and logs cost",
					"operationId": "postChat",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"user_id", "message"},
									"properties": map[string]interface{}{
										"user_id":    map[string]interface{}{"type": "string"},
										"session_id": map[string]interface{}{"type": "string", "description": "Omit to start a new session"},
										"message":    map[string]interface{}{"type": "string"},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Reply with routing and cost breakdown"},
						"400": map[string]interface{}{"description": "Invalid request"},
						"403": map[string]interface{}{"description": "No API key stored for this user"},
						"502": map[string]interface{}{"description": "Inference provider error"},
					},
				},
			},
			"/api/save-key": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Store a provider API key",
					"description": "Encrypts and stores the user's inference API key. user_id must be a UUID.",
					"operationId": "postSaveKey",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"user_id", "api_key"},
									"properties": map[string]interface{}{
										"user_id": map[string]interface{}{"type": "string", "format": "uuid"},
										"api_key": map[string]interface{}{"type": "string"},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Key stored"},
						"400": map[string]interface{}{"description": "Invalid user_id or missing api_key"},
					},
				},
			},
			"/api/memory/{userID}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get memory state",
					"description": "Active sessions, recent episodic summaries, and long-term facts for the user",
					"operationId": "getMemory",
					"parameters": []map[string]interface{}{
						{"name": "userID", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string"}},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Memory state across all tiers"},
					},
				},
				"delete": map[string]interface{}{
					"summary":     "Delete all memory",
					"description": "Wipes working sessions, episodic memories, and long-term facts for the user",
					"operationId": "deleteMemory",
					"parameters": []map[string]interface{}{
						{"name": "userID", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string"}},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Memory deleted"},
					},
				},
			},
			"/api/memory/graph/{userID}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get the memory graph",
					"description": "Episodic memories and facts as nodes, linked where content overlaps",
					"operationId": "getMemoryGraph",
					"parameters": []map[string]interface{}{
						{"name": "userID", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string"}},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Nodes and edges"},
					},
				},
			},
			"/api/cost/analytics/{userID}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get cost analytics",
					"description": "Totals, savings, memory-hit rate, daily breakdown, recent per-query token usage, and model usage",
					"operationId": "getCostAnalytics",
					"parameters": []map[string]interface{}{
						{"name": "userID", "in": "path", "required": true, "schema": map[string]interface{}{"type": "string"}},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Aggregated cost report"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
