package vectorstore

import (
	"context"
	"testing"

	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/testutil"
)

// TestPostgresBackend exercises the pgvector backend against a real
// Postgres instance in a container.
func TestPostgresBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	backend, err := NewPostgres(ctx, db.ConnStr, "documents", embed.LocalDimension)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer backend.Close()

	s := New(embed.NewLocal(), backend, log.NewNop())

	docs := make([]Document, len(policyDocs))
	copy(docs, policyDocs)
	if err := s.Add(ctx, docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	t.Run("count", func(t *testing.T) {
		count, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count != len(policyDocs) {
			t.Errorf("count = %d, want %d", count, len(policyDocs))
		}
	})

	t.Run("search orders by cosine similarity", func(t *testing.T) {
		results, err := s.Search(ctx, "work remotely days per week", WithTopK(3))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		if results[0].ID != "remote-work" {
			t.Errorf("top result = %q, want remote-work", results[0].ID)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Similarity > results[i-1].Similarity {
				t.Errorf("results not sorted: %v then %v", results[i-1].Similarity, results[i].Similarity)
			}
		}
	})

	t.Run("metadata filter uses jsonb containment", func(t *testing.T) {
		results, err := s.Search(ctx, "policy", WithFilter("source", "it"))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 || results[0].ID != "security" {
			t.Errorf("results = %v, want only security", results)
		}
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		updated := []Document{{
			ID:       "expenses",
			Content:  "Expense reports are now due within 45 days.",
			Metadata: map[string]string{"source": "finance", "topic": "expenses"},
		}}
		if err := s.Add(ctx, updated); err != nil {
			t.Fatalf("Add: %v", err)
		}

		count, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count != len(policyDocs) {
			t.Errorf("count after upsert = %d, want %d", count, len(policyDocs))
		}
	})

	t.Run("list returns all documents", func(t *testing.T) {
		docs, err := s.Export(ctx)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if len(docs) != len(policyDocs) {
			t.Fatalf("exported %d documents, want %d", len(docs), len(policyDocs))
		}
		for _, d := range docs {
			if len(d.Embedding) != embed.LocalDimension {
				t.Errorf("document %q embedding has %d dims, want %d",
					d.ID, len(d.Embedding), embed.LocalDimension)
			}
		}
	})
}
