package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/memvault/memvault/internal/models"
)

// KeyRows is the slice of the relational store the credential store
// needs.
type KeyRows interface {
	UpsertAPIKey(ctx context.Context, userID, encryptedKey string) error
	GetAPIKey(ctx context.Context, userID string) (string, error)
}

// CredentialStore stores and retrieves per-user provider API keys,
// encrypting before write and decrypting after read.
type CredentialStore struct {
	rows KeyRows
	box  *Keybox
}

// NewCredentialStore wires the keybox onto the relational rows.
func NewCredentialStore(rows KeyRows, box *Keybox) *CredentialStore {
	return &CredentialStore{rows: rows, box: box}
}

// Save encrypts and stores a user's API key, replacing any previous one.
func (s *CredentialStore) Save(ctx context.Context, userID, apiKey string) error {
	encrypted, err := s.box.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("encrypt API key: %w", err)
	}
	if err := s.rows.UpsertAPIKey(ctx, userID, encrypted); err != nil {
		return fmt.Errorf("store API key: %w", err)
	}
	return nil
}

// Get returns a user's decrypted API key. A missing key maps to
// ErrNoCredential: the user never saved one, which is actionable by
// them, unlike a provider outage.
func (s *CredentialStore) Get(ctx context.Context, userID string) (string, error) {
	encrypted, err := s.rows.GetAPIKey(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("user %s: %w", userID, models.ErrNoCredential)
	}
	if err != nil {
		return "", err
	}

	plaintext, err := s.box.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt API key for user %s: %w", userID, err)
	}
	return plaintext, nil
}
