// Package kv is the short-lived key-value substrate backing working
// memory. The Store interface keeps the substrate swappable; MemStore is
// the in-process implementation.
package kv

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a TTL-expiring key-value store.
//
// Callers that read-modify-write a key (the working-memory append path)
// are exposed to lost updates under concurrent writers for the same key.
// The system assumes at most one active writer per session key; if that
// assumption ever breaks, swap in an implementation with compare-and-swap
// or a per-key queue behind this same interface.
type Store interface {
	// Get returns the value and true, or "" and false if the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetEx writes the value and resets the key's TTL.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns all live keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemStore is an in-process Store with lazy expiry. Safe for concurrent
// use at the single-operation level.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemStore creates an empty in-process store.
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expiresAt) {
		// Expired entries are dropped on next read rather than by a
		// background reaper.
		s.mu.Lock()
		if cur, still := s.entries[key]; still && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var keys []string
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// SetClock overrides the store's time source. Test hook.
func (s *MemStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
