package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memvault/memvault/internal/models"
)

// InsertEpisodic stores a new conversation summary. A missing ID or
// CreatedAt is filled in; memories are born unarchived.
func (s *Store) InsertEpisodic(ctx context.Context, mem *models.EpisodicMemory) error {
	if mem.ID == "" {
		mem.ID = uuid.New().String()
	}
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO episodic_memories (id, user_id, session_id, summary, importance_score, created_at, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, FALSE)
	`

	_, err := s.db.ExecContext(ctx, query,
		mem.ID, mem.UserID, mem.SessionID, mem.Summary, mem.ImportanceScore, mem.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert episodic memory: %w", err)
	}

	return nil
}

// RecentEpisodic returns the newest active (unarchived) memories for a
// user, newest first.
func (s *Store) RecentEpisodic(ctx context.Context, userID string, limit int) ([]models.EpisodicMemory, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT id, user_id, session_id, summary, importance_score, created_at, is_archived
		FROM episodic_memories
		WHERE user_id = ? AND NOT is_archived
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent episodic memories: %w", err)
	}
	defer rows.Close()

	return scanEpisodicRows(rows)
}

// EpisodicOlderThan returns active memories created before the cutoff.
// These are the episodic-to-long-term promotion candidates.
func (s *Store) EpisodicOlderThan(ctx context.Context, userID string, cutoff time.Time) ([]models.EpisodicMemory, error) {
	query := `
		SELECT id, user_id, session_id, summary, importance_score, created_at, is_archived
		FROM episodic_memories
		WHERE user_id = ? AND NOT is_archived AND created_at < ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query aged episodic memories: %w", err)
	}
	defer rows.Close()

	return scanEpisodicRows(rows)
}

// ArchiveEpisodic marks a memory as archived. The transition is one-way
// and idempotent: archiving an already-archived memory succeeds.
func (s *Store) ArchiveEpisodic(ctx context.Context, memoryID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE episodic_memories SET is_archived = TRUE WHERE id = ?", memoryID)
	if err != nil {
		return fmt.Errorf("failed to archive episodic memory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("episodic memory %s: %w", memoryID, models.ErrNotFound)
	}

	return nil
}

// DeleteEpisodic removes every episodic memory for a user, archived
// rows included.
func (s *Store) DeleteEpisodic(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM episodic_memories WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete episodic memories: %w", err)
	}
	return nil
}

// UsersWithAgedEpisodic returns the distinct users that have active
// memories older than the cutoff. The background sweep uses this to
// bound its work to users that actually have promotion candidates.
func (s *Store) UsersWithAgedEpisodic(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM episodic_memories
		WHERE NOT is_archived AND created_at < ?
	`

	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with aged memories: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

func scanEpisodicRows(rows *sql.Rows) ([]models.EpisodicMemory, error) {
	var memories []models.EpisodicMemory
	for rows.Next() {
		var mem models.EpisodicMemory
		err := rows.Scan(&mem.ID, &mem.UserID, &mem.SessionID, &mem.Summary,
			&mem.ImportanceScore, &mem.CreatedAt, &mem.Archived)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}
