package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Chromem is a Backend over an embedded chromem-go collection, either
// in-memory or persisted to a local directory.
type Chromem struct {
	db         *chromem.DB
	collection *chromem.Collection

	// chromem cannot enumerate documents, so the backend tracks what it
	// stored to support List.
	mu   sync.RWMutex
	docs map[string]Document
}

// NewChromem returns an in-memory Chromem backend.
func NewChromem(collection string) (*Chromem, error) {
	return newChromem(chromem.NewDB(), collection)
}

// NewChromemPersistent returns a Chromem backend persisted under path.
func NewChromemPersistent(path, collection string) (*Chromem, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return newChromem(db, collection)
}

func newChromem(db *chromem.DB, collection string) (*Chromem, error) {
	// Documents always arrive with embeddings, so the embedding func is
	// never invoked. chromem requires one anyway.
	c, err := db.GetOrCreateCollection(collection, nil, func(context.Context, string) ([]float32, error) {
		return nil, errors.New("chromem backend requires precomputed embeddings")
	})
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collection, err)
	}
	return &Chromem{db: db, collection: c, docs: make(map[string]Document)}, nil
}

// Upsert implements Backend.
func (c *Chromem) Upsert(ctx context.Context, docs []Document) error {
	for _, d := range docs {
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %q has no embedding", d.ID)
		}
		err := c.collection.AddDocument(ctx, chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
		})
		if err != nil {
			return fmt.Errorf("add document %q: %w", d.ID, err)
		}

		c.mu.Lock()
		c.docs[d.ID] = d
		c.mu.Unlock()
	}
	return nil
}

// Query implements Backend. chromem rejects nResults above the collection
// size, so k is clamped to the document count.
func (c *Chromem) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Result, error) {
	count := c.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	matches, err := c.collection.QueryEmbedding(ctx, vector, k, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Document: Document{
				ID:        m.ID,
				Content:   m.Content,
				Metadata:  m.Metadata,
				Embedding: m.Embedding,
			},
			Similarity: m.Similarity,
		}
	}
	return results, nil
}

// Count implements Backend.
func (c *Chromem) Count(context.Context) (int, error) {
	return c.collection.Count(), nil
}

// List implements Lister. Only documents added through this backend
// instance are returned; a reopened persistent collection starts empty
// from List's point of view.
func (c *Chromem) List(context.Context) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]Document, 0, len(c.docs))
	for _, d := range c.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Close implements Backend. chromem holds no external resources.
func (c *Chromem) Close() error { return nil }

var _ Backend = (*Chromem)(nil)
var _ Lister = (*Chromem)(nil)
