// Package secrets encrypts per-user provider API keys at rest. The
// process-wide encryption key is read once at startup and is read-only
// thereafter; with no key configured, every operation fails closed.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/memvault/memvault/internal/models"
	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32
const nonceSize = 24

// Keybox performs symmetric encryption with a fixed process-wide key.
type Keybox struct {
	key [keySize]byte
}

// NewKeybox builds a Keybox from a base64-encoded 32-byte key. An empty
// or malformed key is a configuration error, surfaced immediately so the
// process refuses to start rather than failing on first use.
func NewKeybox(encodedKey string) (*Keybox, error) {
	if encodedKey == "" {
		return nil, models.ErrNoEncryptionKey
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid base64", models.ErrNoEncryptionKey)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", models.ErrNoEncryptionKey, keySize, len(raw))
	}

	box := &Keybox{}
	copy(box.key[:], raw)
	return box, nil
}

// Encrypt seals the plaintext and returns a base64 blob with the random
// nonce prepended.
func (b *Keybox) Encrypt(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt.
func (b *Keybox) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted blob: %w", err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("encrypted blob too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", fmt.Errorf("failed to decrypt blob: wrong key or corrupted data")
	}
	return string(plaintext), nil
}
