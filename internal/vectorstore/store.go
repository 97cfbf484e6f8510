// Package vectorstore provides embedding-based document storage and
// similarity search.
//
// A Store pairs an embedder with a storage backend: documents are embedded
// on the way in and queries are embedded on the way out, so callers work
// entirely in text. Three backends are available: chromem-go (embedded,
// optionally persistent), Postgres with pgvector, and Qdrant.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
)

var (
	// ErrEmptyQuery is returned when Search is called with no query text.
	ErrEmptyQuery = errors.New("vectorstore: empty query")

	// ErrNoDocuments is returned when Add is called with nothing to add.
	ErrNoDocuments = errors.New("vectorstore: no documents")

	// ErrNotSupported is returned for operations a backend cannot provide.
	ErrNotSupported = errors.New("vectorstore: operation not supported by backend")
)

// Document is a unit of stored content.
type Document struct {
	// ID uniquely identifies the document within the store.
	ID string `json:"id"`

	// Content is the raw text.
	Content string `json:"content"`

	// Metadata holds string key-value pairs that can be filtered on.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Embedding is the document vector. Add fills it in when empty.
	Embedding []float32 `json:"embedding,omitempty"`
}

// Result is a document returned by a similarity search.
type Result struct {
	Document

	// Similarity is the cosine similarity to the query, higher is closer.
	Similarity float32 `json:"similarity"`
}

// Backend stores embedded documents and answers vector queries.
// Implementations: Chromem, Postgres, Qdrant.
type Backend interface {
	// Upsert inserts or replaces documents. Every document must carry an
	// embedding.
	Upsert(ctx context.Context, docs []Document) error

	// Query returns up to k documents closest to the vector, best first.
	// A non-empty filter restricts results to documents whose metadata
	// contains every given key-value pair.
	Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Result, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// Lister is implemented by backends that can enumerate their documents.
// Export requires it.
type Lister interface {
	List(ctx context.Context) ([]Document, error)
}

// DefaultTopK is how many results Search returns unless WithTopK overrides it.
const DefaultTopK = 5

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	topK       int
	filter     map[string]string
	perturbVec func([]float32) []float32
}

// WithTopK sets how many results to return.
func WithTopK(k int) SearchOption {
	return func(o *searchOptions) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithFilter restricts results to documents whose metadata has the given
// key-value pair. Repeated use narrows further.
func WithFilter(key, value string) SearchOption {
	return func(o *searchOptions) {
		if o.filter == nil {
			o.filter = make(map[string]string)
		}
		o.filter[key] = value
	}
}

// WithQueryVectorTransform applies fn to the query embedding before the
// backend sees it. The retrieval labs use it to inject noise and watch
// accuracy fall.
func WithQueryVectorTransform(fn func([]float32) []float32) SearchOption {
	return func(o *searchOptions) { o.perturbVec = fn }
}

// Store is the text-level interface over an embedder and a backend.
type Store struct {
	embedder embed.Embedder
	backend  Backend
	logger   log.Logger
}

// New returns a Store over the given embedder and backend.
func New(embedder embed.Embedder, backend Backend, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{embedder: embedder, backend: backend, logger: logger}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Add embeds documents that lack an embedding and upserts them all.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	var missing []string
	var missingIdx []int
	for i, d := range docs {
		if len(d.Embedding) == 0 {
			missing = append(missing, d.Content)
			missingIdx = append(missingIdx, i)
		}
	}

	if len(missing) > 0 {
		vecs, err := s.embedder.EmbedBatch(ctx, missing)
		if err != nil {
			return fmt.Errorf("embed documents: %w", err)
		}
		for j, vec := range vecs {
			docs[missingIdx[j]].Embedding = vec
		}
	}

	if err := s.backend.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	s.logger.Debug("documents added", "count", len(docs), "embedded", len(missing))
	return nil
}

// Search embeds the query and returns the closest documents.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	o := searchOptions{topK: DefaultTopK}
	for _, opt := range opts {
		opt(&o)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if o.perturbVec != nil {
		vec = o.perturbVec(vec)
	}

	results, err := s.backend.Query(ctx, vec, o.topK, o.filter)
	if err != nil {
		return nil, fmt.Errorf("query backend: %w", err)
	}
	s.logger.Debug("search completed", "query_len", len(query), "results", len(results))
	return results, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.backend.Count(ctx)
}

// Export returns every stored document, or ErrNotSupported when the backend
// cannot enumerate.
func (s *Store) Export(ctx context.Context) ([]Document, error) {
	lister, ok := s.backend.(Lister)
	if !ok {
		return nil, ErrNotSupported
	}
	return lister.List(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
