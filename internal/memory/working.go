// Package memory implements the three memory tiers and the promotion
// lifecycle between them: working turns become episodic summaries when a
// session fills up, and aged summaries become long-term facts.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/memvault/memvault/internal/kv"
	"github.com/memvault/memvault/internal/models"
)

const (
	DefaultWorkingLimit = 10
	DefaultWorkingTTL   = 30 * time.Minute
)

// WorkingStore holds the recent, unsummarized turns of each live
// session as a JSON-encoded log in the key-value substrate.
//
// Append is read-modify-write and not atomic against concurrent writers
// on the same session. The system assumes one active writer per
// (user, session) pair — one user converses in one session at a time.
type WorkingStore struct {
	store kv.Store
	limit int
	ttl   time.Duration
}

// NewWorkingStore creates a working store. Non-positive limit or TTL
// fall back to the defaults.
func NewWorkingStore(store kv.Store, limit int, ttl time.Duration) *WorkingStore {
	if limit <= 0 {
		limit = DefaultWorkingLimit
	}
	if ttl <= 0 {
		ttl = DefaultWorkingTTL
	}
	return &WorkingStore{store: store, limit: limit, ttl: ttl}
}

// Limit returns the configured turn limit.
func (w *WorkingStore) Limit() int {
	return w.limit
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", userID, sessionID)
}

// Read returns the session's turns in append order, or an empty slice if
// the session is absent or expired.
func (w *WorkingStore) Read(ctx context.Context, userID, sessionID string) ([]models.Turn, error) {
	raw, ok, err := w.store.Get(ctx, sessionKey(userID, sessionID))
	if err != nil {
		return nil, fmt.Errorf("read working memory: %w", err)
	}
	if !ok {
		return []models.Turn{}, nil
	}

	var turns []models.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("decode working memory: %w", err)
	}
	return turns, nil
}

// Append adds a turn and returns the new log. Each write resets the
// session's TTL countdown.
func (w *WorkingStore) Append(ctx context.Context, userID, sessionID string, turn models.Turn) ([]models.Turn, error) {
	turns, err := w.Read(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	turns = append(turns, turn)

	data, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("encode working memory: %w", err)
	}
	if err := w.store.SetEx(ctx, sessionKey(userID, sessionID), string(data), w.ttl); err != nil {
		return nil, fmt.Errorf("write working memory: %w", err)
	}
	return turns, nil
}

// Clear removes a session entirely. Used after promotion.
func (w *WorkingStore) Clear(ctx context.Context, userID, sessionID string) error {
	if err := w.store.Delete(ctx, sessionKey(userID, sessionID)); err != nil {
		return fmt.Errorf("clear working memory: %w", err)
	}
	return nil
}

// IsFull reports whether the session has reached the turn limit and is
// eligible for promotion. The store never truncates on its own; the
// lifecycle decides.
func (w *WorkingStore) IsFull(ctx context.Context, userID, sessionID string) (bool, error) {
	turns, err := w.Read(ctx, userID, sessionID)
	if err != nil {
		return false, err
	}
	return len(turns) >= w.limit, nil
}

// Sessions returns the IDs of a user's live sessions.
func (w *WorkingStore) Sessions(ctx context.Context, userID string) ([]string, error) {
	prefix := fmt.Sprintf("session:%s:", userID)
	keys, err := w.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]string, 0, len(keys))
	for _, key := range keys {
		sessions = append(sessions, strings.TrimPrefix(key, prefix))
	}
	return sessions, nil
}
