package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientCreation(t *testing.T) {
	client := NewClient("http://localhost:11434", "nomic-embed-text")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:11434" {
		t.Errorf("Expected baseURL to be http://localhost:11434, got %s", client.baseURL)
	}
	if client.Model() != "nomic-embed-text" {
		t.Errorf("Expected model to be nomic-embed-text, got %s", client.Model())
	}
}

func TestEmbed(t *testing.T) {
	t.Run("returns the vector for a well-formed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/embeddings" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			vector := make([]float32, Dimensions)
			vector[0] = 0.5
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": vector}},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "nomic-embed-text")
		vector, err := client.Embed(context.Background(), "hello")
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		if len(vector) != Dimensions {
			t.Errorf("expected %d dimensions, got %d", Dimensions, len(vector))
		}
		if vector[0] != 0.5 {
			t.Errorf("vector[0] = %v, want 0.5", vector[0])
		}
	})

	t.Run("rejects wrong dimensionality", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": make([]float32, 384)}},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "small-model")
		if _, err := client.Embed(context.Background(), "hello"); err == nil {
			t.Error("expected error for 384-dim vector")
		}
	})

	t.Run("propagates API errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "missing-model")
		if _, err := client.Embed(context.Background(), "hello"); err == nil {
			t.Error("expected error for non-200 status")
		}
	})

	t.Run("rejects empty data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer server.Close()

		client := NewClient(server.URL, "nomic-embed-text")
		if _, err := client.Embed(context.Background(), "hello"); err == nil {
			t.Error("expected error for empty data array")
		}
	})
}
