package memory

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/memvault/memvault/internal/models"
)

// FactRows is the slice of the vector store the long-term tier needs.
type FactRows interface {
	UpsertFact(ctx context.Context, fact *models.LongTermFact) error
	SearchFacts(ctx context.Context, userID string, queryEmbedding []float32, topK int) ([]models.LongTermFact, error)
	DeleteFacts(ctx context.Context, userID string) error
}

// Embedder turns text into a fixed-length vector, stable for the same
// text and embedding version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LongTermStore holds durable semantic facts per user, retrievable by
// similarity to a query.
type LongTermStore struct {
	rows     FactRows
	embedder Embedder
}

// NewLongTermStore wires the embedder onto the fact rows.
func NewLongTermStore(rows FactRows, embedder Embedder) *LongTermStore {
	return &LongTermStore{rows: rows, embedder: embedder}
}

// Save upserts one fact per non-empty mapping value. Values may be
// strings, string lists (joined), or null; empty and null values are
// skipped, not stored. Fact identity is a content hash over the
// normalized value, so saving the same mapping twice is a no-op.
func (l *LongTermStore) Save(ctx context.Context, userID string, facts map[string]any) error {
	for key, value := range facts {
		normalized := normalizeFactValue(value)
		if normalized == "" {
			continue
		}

		content := fmt.Sprintf("%s: %s", key, normalized)
		vector, err := l.embedder.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("embed fact %q: %w", key, err)
		}

		fact := &models.LongTermFact{
			ID:        FactID(userID, key, normalized),
			UserID:    userID,
			FactKey:   key,
			Content:   content,
			Embedding: vector,
		}
		if err := l.rows.UpsertFact(ctx, fact); err != nil {
			return fmt.Errorf("save fact %q: %w", key, err)
		}
	}
	return nil
}

// Search returns the user's facts nearest to the query, as "key: value"
// strings.
func (l *LongTermStore) Search(ctx context.Context, userID, query string, topK int) ([]string, error) {
	vector, err := l.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	facts, err := l.rows.SearchFacts(ctx, userID, vector, topK)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(facts))
	for _, fact := range facts {
		contents = append(contents, fact.Content)
	}
	return contents, nil
}

// DeleteAll removes every fact for the user.
func (l *LongTermStore) DeleteAll(ctx context.Context, userID string) error {
	return l.rows.DeleteFacts(ctx, userID)
}

// FactID derives a fact's identity from user, key, and a structural
// hash of the normalized value. Stable across process restarts, which
// is what makes re-extraction upsert instead of duplicate.
func FactID(userID, factKey, normalizedValue string) string {
	sum := sha256.Sum256([]byte(normalizedValue))
	return fmt.Sprintf("%s_%s_%x", userID, factKey, sum[:8])
}

// normalizeFactValue flattens an extracted value into stable text.
// Null, empty strings, and empty lists normalize to "".
func normalizeFactValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		var parts []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		var parts []string
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
