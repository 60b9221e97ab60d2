package memory

import (
	"context"
	"testing"
	"time"

	"github.com/memvault/memvault/internal/kv"
	"github.com/memvault/memvault/internal/models"
)

func TestWorkingStoreAppendAndRead(t *testing.T) {
	store := NewWorkingStore(kv.NewMemStore(), 10, 30*time.Minute)
	ctx := context.Background()

	t.Run("absent session reads empty", func(t *testing.T) {
		turns, err := store.Read(ctx, "u1", "nope")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(turns) != 0 {
			t.Errorf("expected empty session, got %d turns", len(turns))
		}
	})

	t.Run("append preserves order", func(t *testing.T) {
		store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleUser, Content: "first"})
		store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleAssistant, Content: "second"})
		turns, err := store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleUser, Content: "third"})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		if len(turns) != 3 {
			t.Fatalf("expected 3 turns, got %d", len(turns))
		}
		for i, want := range []string{"first", "second", "third"} {
			if turns[i].Content != want {
				t.Errorf("turns[%d] = %q, want %q", i, turns[i].Content, want)
			}
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		store.Append(ctx, "u1", "other", models.Turn{Role: models.RoleUser, Content: "elsewhere"})

		turns, _ := store.Read(ctx, "u1", "s1")
		for _, turn := range turns {
			if turn.Content == "elsewhere" {
				t.Error("turn leaked across sessions")
			}
		}
	})

	t.Run("clear removes the session", func(t *testing.T) {
		if err := store.Clear(ctx, "u1", "s1"); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		turns, _ := store.Read(ctx, "u1", "s1")
		if len(turns) != 0 {
			t.Errorf("session not empty after clear: %d turns", len(turns))
		}
	})
}

func TestWorkingStoreIsFull(t *testing.T) {
	store := NewWorkingStore(kv.NewMemStore(), 3, 30*time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleUser, Content: "x"})
	}

	full, err := store.IsFull(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("IsFull failed: %v", err)
	}
	if full {
		t.Error("session below limit reported full")
	}

	store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleUser, Content: "x"})

	full, _ = store.IsFull(ctx, "u1", "s1")
	if !full {
		t.Error("session at exactly the limit should be full")
	}
}

func TestWorkingStoreTTLExpiry(t *testing.T) {
	mem := kv.NewMemStore()
	current := time.Now()
	mem.SetClock(func() time.Time { return current })

	store := NewWorkingStore(mem, 10, 30*time.Minute)
	ctx := context.Background()

	store.Append(ctx, "u1", "s1", models.Turn{Role: models.RoleUser, Content: "hello"})

	current = current.Add(31 * time.Minute)

	turns, err := store.Read(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("untouched session past TTL should read empty, got %d turns", len(turns))
	}
}

func TestWorkingStoreSessions(t *testing.T) {
	store := NewWorkingStore(kv.NewMemStore(), 10, 30*time.Minute)
	ctx := context.Background()

	store.Append(ctx, "u1", "alpha", models.Turn{Role: models.RoleUser, Content: "x"})
	store.Append(ctx, "u1", "beta", models.Turn{Role: models.RoleUser, Content: "y"})
	store.Append(ctx, "u2", "gamma", models.Turn{Role: models.RoleUser, Content: "z"})

	sessions, err := store.Sessions(ctx, "u1")
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for u1, got %v", sessions)
	}
	seen := map[string]bool{}
	for _, id := range sessions {
		seen[id] = true
	}
	if !seen["alpha"] || !seen["beta"] {
		t.Errorf("unexpected session IDs: %v", sessions)
	}
}
