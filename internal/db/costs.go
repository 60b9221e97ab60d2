package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memvault/memvault/internal/models"
)

// InsertCostRecord appends one per-query cost breakdown. Records are
// append-only; there is no update path.
func (s *Store) InsertCostRecord(ctx context.Context, rec *models.CostRecord) error {
	if rec.QueryID == "" {
		rec.QueryID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO cost_logs (
			query_id, user_id, session_id,
			working_memory_tokens, episodic_memory_tokens, longterm_memory_tokens,
			user_message_tokens, response_tokens, total_tokens,
			actual_cost, naive_cost, cost_saved, savings_percent,
			model_used, memory_hit, memory_layer_used, estimator_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.QueryID, rec.UserID, rec.SessionID,
		rec.WorkingTokens, rec.EpisodicTokens, rec.LongTermTokens,
		rec.UserMessageTokens, rec.ResponseTokens, rec.TotalTokens,
		rec.ActualCost, rec.NaiveCost, rec.CostSaved, rec.SavingsPercent,
		rec.ModelUsed, rec.MemoryHit, string(rec.MemoryLayerUsed), rec.EstimatorVersion, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cost record: %w", err)
	}

	return nil
}

// ListCostRecords returns a user's cost records oldest first, capped at
// limit.
func (s *Store) ListCostRecords(ctx context.Context, userID string, limit int) ([]models.CostRecord, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT query_id, user_id, session_id,
		       working_memory_tokens, episodic_memory_tokens, longterm_memory_tokens,
		       user_message_tokens, response_tokens, total_tokens,
		       actual_cost, naive_cost, cost_saved, savings_percent,
		       model_used, memory_hit, memory_layer_used, estimator_version, created_at
		FROM cost_logs
		WHERE user_id = ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost records: %w", err)
	}
	defer rows.Close()

	var records []models.CostRecord
	for rows.Next() {
		var rec models.CostRecord
		var layer string
		err := rows.Scan(&rec.QueryID, &rec.UserID, &rec.SessionID,
			&rec.WorkingTokens, &rec.EpisodicTokens, &rec.LongTermTokens,
			&rec.UserMessageTokens, &rec.ResponseTokens, &rec.TotalTokens,
			&rec.ActualCost, &rec.NaiveCost, &rec.CostSaved, &rec.SavingsPercent,
			&rec.ModelUsed, &rec.MemoryHit, &layer, &rec.EstimatorVersion, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.MemoryLayerUsed = models.MemoryLayer(layer)
		records = append(records, rec)
	}
	return records, rows.Err()
}
