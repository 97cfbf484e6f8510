package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
)

var policyDocs = []Document{
	{
		ID:       "remote-work",
		Content:  "Employees may work remotely up to 3 days per week with manager approval.",
		Metadata: map[string]string{"source": "hr", "topic": "remote"},
	},
	{
		ID:       "expenses",
		Content:  "Expense reports must be submitted within 30 days with itemized receipts.",
		Metadata: map[string]string{"source": "finance", "topic": "expenses"},
	},
	{
		ID:       "security",
		Content:  "All laptops must use full disk encryption and automatic screen locking.",
		Metadata: map[string]string{"source": "it", "topic": "security"},
	},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	backend, err := NewChromem("test")
	if err != nil {
		t.Fatalf("NewChromem: %v", err)
	}
	s := New(embed.NewLocal(), backend, log.NewNop())
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	docs := make([]Document, len(policyDocs))
	copy(docs, policyDocs)
	if err := s.Add(context.Background(), docs); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestStoreAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds and stores", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		count, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count != len(policyDocs) {
			t.Errorf("count = %d, want %d", count, len(policyDocs))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Add(ctx, nil); !errors.Is(err, ErrNoDocuments) {
			t.Errorf("err = %v, want ErrNoDocuments", err)
		}
	})

	t.Run("precomputed embeddings pass through", func(t *testing.T) {
		s := newTestStore(t)
		vec, err := embed.NewLocal().Embed(ctx, "precomputed")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		err = s.Add(ctx, []Document{{ID: "pre", Content: "precomputed", Embedding: vec}})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if count, _ := s.Count(ctx); count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	})
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("most relevant document first", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		results, err := s.Search(ctx, "work remotely days per week")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) == 0 {
			t.Fatal("no results")
		}
		if results[0].ID != "remote-work" {
			t.Errorf("top result = %q, want remote-work", results[0].ID)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Similarity > results[i-1].Similarity {
				t.Errorf("results not sorted by similarity: %v then %v",
					results[i-1].Similarity, results[i].Similarity)
			}
		}
	})

	t.Run("top k limits results", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		results, err := s.Search(ctx, "policy", WithTopK(2))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("got %d results, want 2", len(results))
		}
	})

	t.Run("default top k clamps to corpus size", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		// DefaultTopK is 5 but only 3 documents exist.
		results, err := s.Search(ctx, "policy")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != len(policyDocs) {
			t.Errorf("got %d results, want %d", len(results), len(policyDocs))
		}
	})

	t.Run("metadata filter", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		results, err := s.Search(ctx, "policy", WithFilter("source", "finance"))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 || results[0].ID != "expenses" {
			t.Errorf("results = %v, want only expenses", results)
		}
	})

	t.Run("query vector transform changes retrieval", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s)

		hijack, err := embed.NewLocal().Embed(ctx, policyDocs[2].Content)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		results, err := s.Search(ctx, "work remotely days per week",
			WithTopK(1),
			WithQueryVectorTransform(func([]float32) []float32 { return hijack }))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 || results[0].ID != "security" {
			t.Errorf("transformed query returned %v, want the security doc", results)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		s := newTestStore(t)
		if _, err := s.Search(ctx, ""); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("err = %v, want ErrEmptyQuery", err)
		}
	})

	t.Run("empty store returns nothing", func(t *testing.T) {
		s := newTestStore(t)
		results, err := s.Search(ctx, "anything")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("got %d results from an empty store", len(results))
		}
	})
}
