package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/memvault/memvault/internal/models"
)

// UpsertAPIKey stores or replaces a user's encrypted provider key.
// Only the ciphertext ever touches the database.
func (s *Store) UpsertAPIKey(ctx context.Context, userID, encryptedKey string) error {
	query := `
		INSERT OR REPLACE INTO user_api_keys (user_id, key_encrypted, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	_, err := s.db.ExecContext(ctx, query, userID, encryptedKey)
	if err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	return nil
}

// GetAPIKey returns a user's encrypted provider key, or ErrNotFound.
func (s *Store) GetAPIKey(ctx context.Context, userID string) (string, error) {
	var encrypted string
	err := s.db.QueryRowContext(ctx,
		"SELECT key_encrypted FROM user_api_keys WHERE user_id = ?", userID).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("API key for user %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get API key: %w", err)
	}
	return encrypted, nil
}
