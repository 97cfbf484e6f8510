package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raglab/raglab/internal/chunk"
	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/vectorstore"
)

func newTestSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	backend, err := vectorstore.NewChromem("test")
	if err != nil {
		t.Fatalf("NewChromem: %v", err)
	}
	store := vectorstore.New(embed.NewLocal(), backend, log.NewNop())
	t.Cleanup(func() { store.Close() })
	return New(store, log.NewNop(), opts...)
}

const remoteWorkDoc = `Remote Work Policy

Employees may work remotely up to 3 days per week with manager approval.
Remote work days must be scheduled in advance through the HR portal.
All remote work requires a secure VPN connection to company systems.`

const expenseDoc = `Expense Policy

Expense reports must be submitted within 30 days with itemized receipts.
Meal expenses are capped at 75 dollars per day during business travel.`

func seedSystem(t *testing.T, sys *System) {
	t.Helper()
	ctx := context.Background()
	if _, err := sys.AddText(ctx, "remote_work.md", remoteWorkDoc); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if _, err := sys.AddText(ctx, "expenses.md", expenseDoc); err != nil {
		t.Fatalf("AddText: %v", err)
	}
}

func TestChunkID(t *testing.T) {
	t.Run("stable", func(t *testing.T) {
		a := ChunkID("policy.md", 0, "some chunk text")
		b := ChunkID("policy.md", 0, "some chunk text")
		if a != b {
			t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
		}
		if len(a) != 32 {
			t.Errorf("ID length = %d, want 32 hex chars", len(a))
		}
	})

	t.Run("varies by source index and content", func(t *testing.T) {
		base := ChunkID("policy.md", 0, "some chunk text")
		if ChunkID("other.md", 0, "some chunk text") == base {
			t.Error("different source produced the same ID")
		}
		if ChunkID("policy.md", 1, "some chunk text") == base {
			t.Error("different index produced the same ID")
		}
		if ChunkID("policy.md", 0, "other chunk text") == base {
			t.Error("different content produced the same ID")
		}
	})

	t.Run("only the first 50 runes of content matter", func(t *testing.T) {
		prefix := strings.Repeat("x", 50)
		a := ChunkID("policy.md", 0, prefix+"ignored tail one")
		b := ChunkID("policy.md", 0, prefix+"ignored tail two")
		if a != b {
			t.Error("content beyond 50 runes changed the ID")
		}
	})
}

func TestSystemDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks with the fixed window", func(t *testing.T) {
		sys := newTestSystem(t)
		n, err := sys.AddText(ctx, "remote_work.md", remoteWorkDoc)
		if err != nil {
			t.Fatalf("AddText: %v", err)
		}

		// 120-rune window advancing 100 runes over the document.
		runes := len([]rune(remoteWorkDoc))
		want := (runes + DefaultChunkStep - 1) / DefaultChunkStep
		if n != want {
			t.Errorf("chunks = %d, want %d for %d runes", n, want, runes)
		}
	})

	t.Run("caps results at one", func(t *testing.T) {
		sys := newTestSystem(t)
		seedSystem(t, sys)

		results, err := sys.Search(ctx, "remote work vpn", 5)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("got %d results, want the forced single result", len(results))
		}
	})

	t.Run("search is deterministic despite noise", func(t *testing.T) {
		sys := newTestSystem(t)
		seedSystem(t, sys)

		first, err := sys.Search(ctx, "expense reports receipts", 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		second, err := sys.Search(ctx, "expense reports receipts", 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(first) != 1 || len(second) != 1 {
			t.Fatalf("got %d and %d results, want 1 and 1", len(first), len(second))
		}
		if first[0].ID != second[0].ID {
			t.Errorf("repeated search returned different chunks: %s vs %s", first[0].ID, second[0].ID)
		}
	})
}

func TestSystemRepaired(t *testing.T) {
	ctx := context.Background()

	sys := newTestSystem(t,
		WithSplitter(chunk.NewSentenceSplitter(400)),
		WithoutQueryNoise(),
		WithMaxResults(3),
	)
	seedSystem(t, sys)

	results, err := sys.Search(ctx, "expense reports itemized receipts 30 days", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if len(results) > 3 {
		t.Errorf("got %d results, want at most 3", len(results))
	}
	if results[0].Metadata["source"] != "expenses.md" {
		t.Errorf("top result from %q, want expenses.md", results[0].Metadata["source"])
	}
	if !chunk.EndsAtSentenceBoundary(results[0].Content) {
		t.Errorf("sentence splitter produced a mid-sentence chunk: %q", results[0].Content)
	}
}

func TestGaussianNoise(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3, 0.4}

	t.Run("deterministic per seed", func(t *testing.T) {
		a := GaussianNoise(42, 0.15)(vec)
		b := GaussianNoise(42, 0.15)(vec)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("same seed produced different noise at %d", i)
			}
		}
	})

	t.Run("perturbs the input", func(t *testing.T) {
		noisy := GaussianNoise(42, 0.15)(vec)
		same := true
		for i := range vec {
			if noisy[i] != vec[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("noise left the vector unchanged")
		}
	})

	t.Run("different seeds differ", func(t *testing.T) {
		a := GaussianNoise(42, 0.15)(vec)
		b := GaussianNoise(7, 0.15)(vec)
		same := true
		for i := range a {
			if a[i] != b[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("different seeds produced identical noise")
		}
	})
}

func TestProcessDocuments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	files := map[string]string{
		"remote_work.md": remoteWorkDoc,
		"expenses.txt":   expenseDoc,
		"ignored.json":   `{"not": "indexed"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	sys := newTestSystem(t)
	total, err := sys.ProcessDocuments(ctx, dir)
	if err != nil {
		t.Fatalf("ProcessDocuments: %v", err)
	}
	if total == 0 {
		t.Fatal("no chunks indexed")
	}

	count, err := sys.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != total {
		t.Errorf("store holds %d chunks, ProcessDocuments reported %d", count, total)
	}

	// Only .md and .txt files are indexed; metadata carries the basename.
	sys2 := newTestSystem(t)
	mdChunks, _ := sys2.AddText(ctx, "remote_work.md", remoteWorkDoc)
	txtChunks, _ := sys2.AddText(ctx, "expenses.txt", expenseDoc)
	if total != mdChunks+txtChunks {
		t.Errorf("total = %d, want %d (json file should be skipped)", total, mdChunks+txtChunks)
	}

	results, err := sys.Search(ctx, "expense reports receipts", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 1 {
		src := results[0].Metadata["source"]
		if src != "remote_work.md" && src != "expenses.txt" {
			t.Errorf("metadata source = %q, want a file basename", src)
		}
		if results[0].Metadata["chunk_index"] == "" {
			t.Error("metadata chunk_index missing")
		}
	}
}
