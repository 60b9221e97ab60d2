package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemStoreGetSet(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("round-trip", func(t *testing.T) {
		if err := store.SetEx(ctx, "session:u1:s1", `[{"role":"user"}]`, time.Minute); err != nil {
			t.Fatalf("SetEx failed: %v", err)
		}

		value, ok, err := store.Get(ctx, "session:u1:s1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || value != `[{"role":"user"}]` {
			t.Errorf("Get = (%q, %v), want stored value", value, ok)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store.SetEx(ctx, "gone", "x", time.Minute)
		if err := store.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := store.Delete(ctx, "gone"); err != nil {
			t.Errorf("second Delete failed: %v", err)
		}
		if _, ok, _ := store.Get(ctx, "gone"); ok {
			t.Error("key still readable after delete")
		}
	})
}

func TestMemStoreTTL(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	current := time.Now()
	store.SetClock(func() time.Time { return current })

	store.SetEx(ctx, "session:u1:s1", "turns", 30*time.Minute)

	if _, ok, _ := store.Get(ctx, "session:u1:s1"); !ok {
		t.Fatal("fresh key should be readable")
	}

	current = current.Add(31 * time.Minute)

	if _, ok, _ := store.Get(ctx, "session:u1:s1"); ok {
		t.Error("key readable past its TTL")
	}

	t.Run("SetEx resets the countdown", func(t *testing.T) {
		store.SetEx(ctx, "session:u2:s1", "v1", 30*time.Minute)
		current = current.Add(20 * time.Minute)
		store.SetEx(ctx, "session:u2:s1", "v2", 30*time.Minute)
		current = current.Add(20 * time.Minute)

		value, ok, _ := store.Get(ctx, "session:u2:s1")
		if !ok || value != "v2" {
			t.Errorf("key expired despite TTL reset: (%q, %v)", value, ok)
		}
	})
}

func TestMemStoreKeys(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	current := time.Now()
	store.SetClock(func() time.Time { return current })

	store.SetEx(ctx, "session:u1:alpha", "a", time.Hour)
	store.SetEx(ctx, "session:u1:beta", "b", time.Minute)
	store.SetEx(ctx, "session:u2:gamma", "c", time.Hour)

	keys, err := store.Keys(ctx, "session:u1:")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys for u1, got %d: %v", len(keys), keys)
	}

	current = current.Add(2 * time.Minute)

	keys, _ = store.Keys(ctx, "session:u1:")
	if len(keys) != 1 || keys[0] != "session:u1:alpha" {
		t.Errorf("expired key leaked into listing: %v", keys)
	}
}
