package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/memvault/memvault/internal/models"
)

// UpsertFact inserts or replaces a long-term fact. The caller derives
// the ID from (userID, factKey, content hash), so re-extracting an
// unchanged fact lands on the same row instead of duplicating.
func (s *Store) UpsertFact(ctx context.Context, fact *models.LongTermFact) error {
	if fact.ID == "" {
		return fmt.Errorf("fact ID is required for upsert")
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now()
	}

	// DuckDB takes FLOAT[] values as JSON text and casts on insert.
	var embeddingJSON interface{}
	if len(fact.Embedding) > 0 {
		data, _ := json.Marshal(fact.Embedding)
		embeddingJSON = string(data)
	} else {
		embeddingJSON = nil
	}

	query := `
		INSERT OR REPLACE INTO longterm_facts (id, user_id, fact_key, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		fact.ID, fact.UserID, fact.FactKey, fact.Content, embeddingJSON, fact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fact: %w", err)
	}

	return nil
}

// SearchFacts returns the user's facts ranked by cosine similarity to
// the query embedding, nearest first. With no query embedding it falls
// back to newest first.
func (s *Store) SearchFacts(ctx context.Context, userID string, queryEmbedding []float32, topK int) ([]models.LongTermFact, error) {
	if topK <= 0 {
		topK = 3
	}

	query := `
		SELECT id, user_id, fact_key, content, created_at
		FROM longterm_facts
		WHERE user_id = ?
	`

	if len(queryEmbedding) > 0 {
		embeddingJSON, err := json.Marshal(queryEmbedding)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
		}
		query += " AND embedding IS NOT NULL"
		query += fmt.Sprintf(" ORDER BY array_cosine_similarity(embedding, %s::FLOAT[768]) DESC", string(embeddingJSON))
	} else {
		query += " ORDER BY created_at DESC"
	}
	query += fmt.Sprintf(" LIMIT %d", topK)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}
	defer rows.Close()

	var facts []models.LongTermFact
	for rows.Next() {
		var fact models.LongTermFact
		if err := rows.Scan(&fact.ID, &fact.UserID, &fact.FactKey, &fact.Content, &fact.CreatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// ListFacts returns every fact for a user, newest first.
func (s *Store) ListFacts(ctx context.Context, userID string) ([]models.LongTermFact, error) {
	query := `
		SELECT id, user_id, fact_key, content, created_at
		FROM longterm_facts
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var facts []models.LongTermFact
	for rows.Next() {
		var fact models.LongTermFact
		if err := rows.Scan(&fact.ID, &fact.UserID, &fact.FactKey, &fact.Content, &fact.CreatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// DeleteFacts removes every fact for a user.
func (s *Store) DeleteFacts(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM longterm_facts WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete facts: %w", err)
	}
	return nil
}

// CountFacts returns the number of stored facts for a user.
func (s *Store) CountFacts(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM longterm_facts WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return count, nil
}
