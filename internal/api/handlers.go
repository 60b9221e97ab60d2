package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/memvault/memvault/internal/chat"
	"github.com/memvault/memvault/internal/memory"
	"github.com/memvault/memvault/internal/models"
)

const graphMemoryLimit = 25

// SaveKeyRequest represents the request body for storing a provider key
type SaveKeyRequest struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}

// MemoryView is the full memory state returned for one user
type MemoryView struct {
	UserID         string                  `json:"user_id"`
	ActiveSessions []string                `json:"active_sessions"`
	EpisodicRecent []models.EpisodicMemory `json:"episodic_recent"`
	LongTermFacts  []models.LongTermFact   `json:"longterm_facts"`
	LongTermCount  int                     `json:"longterm_count"`
}

// handleChat runs one query through the chat pipeline
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.chat.Handle(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoCredential):
			errorResponse(w, http.StatusForbidden, "no API key stored for this user; call /api/save-key first")
		case errors.Is(err, models.ErrNoEncryptionKey):
			errorResponse(w, http.StatusInternalServerError, "server encryption key not configured")
		case errors.Is(err, models.ErrUpstream):
			errorResponse(w, http.StatusBadGateway, "inference provider error: "+err.Error())
		default:
			errorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	successResponse(w, resp)
}

// handleSaveKey encrypts and stores a user's provider API key
func (s *Server) handleSaveKey(w http.ResponseWriter, r *http.Request) {
	var req SaveKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := uuid.Parse(req.UserID); err != nil {
		errorResponse(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.APIKey == "" {
		errorResponse(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := s.credentials.Save(r.Context(), req.UserID, req.APIKey); err != nil {
		if errors.Is(err, models.ErrNoEncryptionKey) {
			errorResponse(w, http.StatusInternalServerError, "server encryption key not configured")
			return
		}
		errorResponse(w, http.StatusInternalServerError, "failed to store API key: "+err.Error())
		return
	}

	successResponse(w, map[string]interface{}{
		"success": true,
		"message": "API key stored",
	})
}

// handleGetMemory returns the user's state across all three tiers
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ctx := r.Context()

	sessions, err := s.working.Sessions(ctx, userID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to list sessions: "+err.Error())
		return
	}

	episodic, err := s.store.RecentEpisodic(ctx, userID, 10)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to load episodic memories: "+err.Error())
		return
	}

	facts, err := s.store.ListFacts(ctx, userID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to load facts: "+err.Error())
		return
	}

	if episodic == nil {
		episodic = []models.EpisodicMemory{}
	}
	if facts == nil {
		facts = []models.LongTermFact{}
	}

	successResponse(w, MemoryView{
		UserID:         userID,
		ActiveSessions: sessions,
		EpisodicRecent: episodic,
		LongTermFacts:  facts,
		LongTermCount:  len(facts),
	})
}

// handleDeleteMemory wipes every tier for the user
func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ctx := r.Context()

	sessions, err := s.working.Sessions(ctx, userID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to list sessions: "+err.Error())
		return
	}
	for _, sessionID := range sessions {
		if err := s.working.Clear(ctx, userID, sessionID); err != nil {
			errorResponse(w, http.StatusInternalServerError, "failed to clear session: "+err.Error())
			return
		}
	}

	if err := s.store.DeleteEpisodic(ctx, userID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to delete episodic memories: "+err.Error())
		return
	}
	if err := s.store.DeleteFacts(ctx, userID); err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to delete facts: "+err.Error())
		return
	}

	successResponse(w, map[string]interface{}{
		"success": true,
		"message": "All memory deleted",
	})
}

// handleMemoryGraph returns the cross-linked memory graph
func (s *Server) handleMemoryGraph(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ctx := r.Context()

	episodic, err := s.store.RecentEpisodic(ctx, userID, graphMemoryLimit)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to load episodic memories: "+err.Error())
		return
	}
	facts, err := s.store.ListFacts(ctx, userID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to load facts: "+err.Error())
		return
	}

	successResponse(w, memory.BuildGraph(episodic, facts))
}

// handleCostAnalytics returns the user's aggregated cost report
func (s *Server) handleCostAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	report, err := s.analytics.Report(r.Context(), userID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to compute analytics: "+err.Error())
		return
	}

	successResponse(w, report)
}
