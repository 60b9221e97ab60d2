package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	cases := []struct {
		name     string
		sentinel error
	}{
		{"not found", ErrNotFound},
		{"no credential", ErrNoCredential},
		{"no encryption key", ErrNoEncryptionKey},
		{"upstream", ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("chat request for user abc: %w", tc.sentinel)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Errorf("errors.Is lost sentinel after wrapping: %v", wrapped)
			}
		})
	}
}

func TestMemoryLayerZeroValueIsNone(t *testing.T) {
	var layer MemoryLayer
	if layer != LayerNone {
		t.Errorf("expected zero value to be LayerNone, got %q", layer)
	}
}
