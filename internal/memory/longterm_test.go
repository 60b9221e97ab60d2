package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/memvault/memvault/internal/models"
)

type fakeFactRows struct {
	facts     map[string]*models.LongTermFact
	upserts   int
	searchErr error
}

func newFakeFactRows() *fakeFactRows {
	return &fakeFactRows{facts: map[string]*models.LongTermFact{}}
}

func (f *fakeFactRows) UpsertFact(_ context.Context, fact *models.LongTermFact) error {
	f.upserts++
	f.facts[fact.ID] = fact
	return nil
}

func (f *fakeFactRows) SearchFacts(_ context.Context, userID string, _ []float32, topK int) ([]models.LongTermFact, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []models.LongTermFact
	for _, fact := range f.facts {
		if fact.UserID == userID && len(out) < topK {
			out = append(out, *fact)
		}
	}
	return out, nil
}

func (f *fakeFactRows) DeleteFacts(_ context.Context, userID string) error {
	for id, fact := range f.facts {
		if fact.UserID == userID {
			delete(f.facts, id)
		}
	}
	return nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func TestLongTermStoreSave(t *testing.T) {
	ctx := context.Background()

	t.Run("stores non-empty values as key colon value", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{})

		err := store.Save(ctx, "u1", map[string]any{"name": "Ada"})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if len(rows.facts) != 1 {
			t.Fatalf("expected 1 fact, got %d", len(rows.facts))
		}
		for _, fact := range rows.facts {
			if fact.Content != "name: Ada" {
				t.Errorf("content = %q, want %q", fact.Content, "name: Ada")
			}
			if fact.FactKey != "name" {
				t.Errorf("fact key = %q, want name", fact.FactKey)
			}
			if len(fact.Embedding) == 0 {
				t.Error("fact stored without embedding")
			}
		}
	})

	t.Run("skips null empty and whitespace values", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{})

		err := store.Save(ctx, "u1", map[string]any{
			"location": nil,
			"job":      "",
			"hobby":    "   ",
			"pets":     []any{},
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if len(rows.facts) != 0 {
			t.Errorf("expected no facts stored, got %d", len(rows.facts))
		}
	})

	t.Run("joins list values", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{})

		store.Save(ctx, "u1", map[string]any{"languages": []any{"Go", "Python"}})
		for _, fact := range rows.facts {
			if fact.Content != "languages: Go, Python" {
				t.Errorf("content = %q", fact.Content)
			}
		}
	})

	t.Run("same mapping twice upserts the same ID", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{})

		store.Save(ctx, "u1", map[string]any{"name": "Ada"})
		store.Save(ctx, "u1", map[string]any{"name": "Ada"})

		if rows.upserts != 2 {
			t.Errorf("expected 2 upserts, got %d", rows.upserts)
		}
		if len(rows.facts) != 1 {
			t.Errorf("resave duplicated the fact: %d rows", len(rows.facts))
		}
	})

	t.Run("changed value gets a new ID", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{})

		store.Save(ctx, "u1", map[string]any{"name": "Ada"})
		store.Save(ctx, "u1", map[string]any{"name": "Grace"})

		if len(rows.facts) != 2 {
			t.Errorf("expected 2 distinct facts, got %d", len(rows.facts))
		}
	})

	t.Run("embedder failure propagates", func(t *testing.T) {
		rows := newFakeFactRows()
		store := NewLongTermStore(rows, &fakeEmbedder{err: errors.New("embed down")})

		err := store.Save(ctx, "u1", map[string]any{"name": "Ada"})
		if err == nil {
			t.Fatal("expected error from failing embedder")
		}
		if len(rows.facts) != 0 {
			t.Error("fact stored despite embed failure")
		}
	})
}

func TestLongTermStoreSearch(t *testing.T) {
	ctx := context.Background()
	rows := newFakeFactRows()
	store := NewLongTermStore(rows, &fakeEmbedder{})

	store.Save(ctx, "u1", map[string]any{"name": "Ada", "job": "engineer"})

	results, err := store.Search(ctx, "u1", "who am I", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, content := range results {
		if !strings.Contains(content, ": ") {
			t.Errorf("result %q not in key: value form", content)
		}
	}
}

func TestFactID(t *testing.T) {
	a := FactID("u1", "name", "Ada")
	b := FactID("u1", "name", "Ada")
	c := FactID("u1", "name", "Grace")
	d := FactID("u2", "name", "Ada")

	if a != b {
		t.Error("same inputs must produce the same ID")
	}
	if a == c {
		t.Error("different values must produce different IDs")
	}
	if a == d {
		t.Error("different users must produce different IDs")
	}
	if !strings.HasPrefix(a, "u1_name_") {
		t.Errorf("unexpected ID shape: %q", a)
	}
}

func TestNormalizeFactValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "  Ada  ", "Ada"},
		{"empty string", "", ""},
		{"any list", []any{"Go", " Python "}, "Go, Python"},
		{"list with blanks", []any{"", "Go", "  "}, "Go"},
		{"string list", []string{"a", "b"}, "a, b"},
		{"number", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeFactValue(tt.value); got != tt.want {
				t.Errorf("normalizeFactValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
