package secrets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/memvault/memvault/internal/models"
)

func testKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestNewKeybox(t *testing.T) {
	t.Run("empty key fails closed", func(t *testing.T) {
		_, err := NewKeybox("")
		if !errors.Is(err, models.ErrNoEncryptionKey) {
			t.Errorf("expected ErrNoEncryptionKey, got %v", err)
		}
	})

	t.Run("invalid base64 fails closed", func(t *testing.T) {
		_, err := NewKeybox("not base64 at all!!!")
		if !errors.Is(err, models.ErrNoEncryptionKey) {
			t.Errorf("expected ErrNoEncryptionKey, got %v", err)
		}
	})

	t.Run("wrong length fails closed", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("too short"))
		_, err := NewKeybox(short)
		if !errors.Is(err, models.ErrNoEncryptionKey) {
			t.Errorf("expected ErrNoEncryptionKey, got %v", err)
		}
	})
}

func TestEncryptDecrypt(t *testing.T) {
	box, err := NewKeybox(testKey(t))
	if err != nil {
		t.Fatalf("NewKeybox failed: %v", err)
	}

	t.Run("round-trip", func(t *testing.T) {
		blob, err := box.Encrypt("gsk_live_secret")
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if blob == "gsk_live_secret" {
			t.Fatal("ciphertext equals plaintext")
		}

		plain, err := box.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if plain != "gsk_live_secret" {
			t.Errorf("Decrypt = %q, want original plaintext", plain)
		}
	})

	t.Run("fresh nonce per call", func(t *testing.T) {
		a, _ := box.Encrypt("same input")
		b, _ := box.Encrypt("same input")
		if a == b {
			t.Error("two encryptions of the same input produced identical blobs")
		}
	})

	t.Run("wrong key cannot decrypt", func(t *testing.T) {
		other, _ := NewKeybox(testKey(t))
		blob, _ := box.Encrypt("secret")
		if _, err := other.Decrypt(blob); err == nil {
			t.Error("decryption with a different key should fail")
		}
	})

	t.Run("garbage blob fails cleanly", func(t *testing.T) {
		if _, err := box.Decrypt("AAAA"); err == nil {
			t.Error("expected error for truncated blob")
		}
		if _, err := box.Decrypt("%%%not-base64%%%"); err == nil {
			t.Error("expected error for non-base64 blob")
		}
	})
}

type fakeKeyRows struct {
	rows map[string]string
}

func (f *fakeKeyRows) UpsertAPIKey(ctx context.Context, userID, encryptedKey string) error {
	f.rows[userID] = encryptedKey
	return nil
}

func (f *fakeKeyRows) GetAPIKey(ctx context.Context, userID string) (string, error) {
	blob, ok := f.rows[userID]
	if !ok {
		return "", models.ErrNotFound
	}
	return blob, nil
}

func TestCredentialStore(t *testing.T) {
	box, _ := NewKeybox(testKey(t))
	rows := &fakeKeyRows{rows: make(map[string]string)}
	store := NewCredentialStore(rows, box)
	ctx := context.Background()

	t.Run("missing credential is ErrNoCredential", func(t *testing.T) {
		_, err := store.Get(ctx, "nobody")
		if !errors.Is(err, models.ErrNoCredential) {
			t.Errorf("expected ErrNoCredential, got %v", err)
		}
	})

	t.Run("save then get round-trips", func(t *testing.T) {
		if err := store.Save(ctx, "u1", "gsk_test_key"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if stored := rows.rows["u1"]; stored == "gsk_test_key" {
			t.Error("API key stored in plaintext")
		}

		key, err := store.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if key != "gsk_test_key" {
			t.Errorf("Get = %q, want original key", key)
		}
	})
}
