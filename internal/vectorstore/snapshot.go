package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot is a portable JSON dump of a store's documents, embeddings
// included, so a corpus can be rebuilt without re-embedding.
type Snapshot struct {
	SavedAt   time.Time  `json:"saved_at"`
	Count     int        `json:"count"`
	Documents []Document `json:"documents"`
}

// SaveSnapshot exports the store's documents to a JSON file.
func SaveSnapshot(ctx context.Context, s *Store, path string) error {
	docs, err := s.Export(ctx)
	if err != nil {
		return fmt.Errorf("export documents: %w", err)
	}

	snap := Snapshot{
		SavedAt:   time.Now().UTC(),
		Count:     len(docs),
		Documents: docs,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// RestoreSnapshot loads a snapshot file into the store. Documents keep
// their saved embeddings, so no embedder calls are made.
func RestoreSnapshot(ctx context.Context, s *Store, path string) (int, error) {
	snap, err := LoadSnapshot(path)
	if err != nil {
		return 0, err
	}
	if len(snap.Documents) == 0 {
		return 0, nil
	}
	if err := s.Add(ctx, snap.Documents); err != nil {
		return 0, fmt.Errorf("restore documents: %w", err)
	}
	return len(snap.Documents), nil
}
