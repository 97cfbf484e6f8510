package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")

	src := newTestStore(t)
	seed(t, src)

	if err := SaveSnapshot(ctx, src, path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Count != len(policyDocs) || len(snap.Documents) != len(policyDocs) {
		t.Fatalf("snapshot holds %d/%d documents, want %d", snap.Count, len(snap.Documents), len(policyDocs))
	}
	for _, d := range snap.Documents {
		if len(d.Embedding) == 0 {
			t.Errorf("document %q saved without embedding", d.ID)
		}
	}

	dst := newTestStore(t)
	restored, err := RestoreSnapshot(ctx, dst, path)
	if err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if restored != len(policyDocs) {
		t.Errorf("restored %d documents, want %d", restored, len(policyDocs))
	}

	results, err := dst.Search(ctx, "work remotely days per week", WithTopK(1))
	if err != nil {
		t.Fatalf("Search after restore: %v", err)
	}
	if len(results) != 1 || results[0].ID != "remote-work" {
		t.Errorf("search after restore returned %v", results)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing snapshot file")
	}
}

func TestRestoreSnapshotEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.json")

	empty := New(embed.NewLocal(), mustChromem(t), log.NewNop())
	t.Cleanup(func() { empty.Close() })
	if err := SaveSnapshot(ctx, empty, path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	dst := newTestStore(t)
	restored, err := RestoreSnapshot(ctx, dst, path)
	if err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if restored != 0 {
		t.Errorf("restored %d documents from an empty snapshot", restored)
	}
}

func mustChromem(t *testing.T) *Chromem {
	t.Helper()
	backend, err := NewChromem("test")
	if err != nil {
		t.Fatalf("NewChromem: %v", err)
	}
	return backend
}
