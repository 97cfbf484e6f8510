// Package rag wires chunking, embedding and vector search into a single
// retrieval system.
//
// The default configuration is deliberately poor: a 120-rune fixed window
// that shreds sentences, Gaussian noise injected into every query vector,
// and a single-result cap. The troubleshooting labs hand students this
// system, let the evaluator score it, and have them fix it through the
// options until accuracy recovers.
package rag

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raglab/raglab/internal/chunk"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/vectorstore"
)

// Defaults of the degraded configuration.
const (
	DefaultChunkSize  = 120
	DefaultChunkStep  = 100
	DefaultNoiseSeed  = 42
	DefaultNoiseSigma = 0.15
	DefaultMaxResults = 1
)

// System indexes documents and answers retrieval queries.
type System struct {
	store    *vectorstore.Store
	splitter chunk.Splitter
	logger   log.Logger

	noise      bool
	noiseSeed  int64
	noiseSigma float64
	maxResults int
}

// Option adjusts the system away from its degraded defaults.
type Option func(*System)

// WithSplitter replaces the fixed-window splitter.
func WithSplitter(s chunk.Splitter) Option {
	return func(sys *System) {
		if s != nil {
			sys.splitter = s
		}
	}
}

// WithQueryNoise sets the noise parameters applied to query vectors.
func WithQueryNoise(seed int64, sigma float64) Option {
	return func(sys *System) {
		sys.noise = true
		sys.noiseSeed = seed
		sys.noiseSigma = sigma
	}
}

// WithoutQueryNoise disables query vector noise.
func WithoutQueryNoise() Option {
	return func(sys *System) { sys.noise = false }
}

// WithMaxResults raises the cap on results per query.
func WithMaxResults(n int) Option {
	return func(sys *System) {
		if n > 0 {
			sys.maxResults = n
		}
	}
}

// New returns a System over the store. Without options it runs the degraded
// configuration: fixed 120/100 chunking, seeded query noise, one result.
func New(store *vectorstore.Store, logger log.Logger, opts ...Option) *System {
	if logger == nil {
		logger = log.NewNop()
	}
	sys := &System{
		store:      store,
		splitter:   chunk.NewFixedSplitter(DefaultChunkSize, DefaultChunkStep),
		logger:     logger,
		noise:      true,
		noiseSeed:  DefaultNoiseSeed,
		noiseSigma: DefaultNoiseSigma,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(sys)
	}
	return sys
}

// ChunkID derives a stable chunk identifier from the source name, the chunk
// index and a prefix of the content.
func ChunkID(source string, index int, text string) string {
	prefix := text
	if runes := []rune(text); len(runes) > 50 {
		prefix = string(runes[:50])
	}
	sum := md5.Sum([]byte(source + "_" + strconv.Itoa(index) + "_" + prefix))
	return hex.EncodeToString(sum[:])
}

// AddText chunks a named document and indexes the pieces. It returns the
// number of chunks stored.
func (s *System) AddText(ctx context.Context, source, text string) (int, error) {
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			ID:      ChunkID(source, c.Index, c.Text),
			Content: c.Text,
			Metadata: map[string]string{
				"source":      source,
				"chunk_index": strconv.Itoa(c.Index),
			},
		}
	}
	if err := s.store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("index %s: %w", source, err)
	}

	s.logger.Debug("document indexed", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// ProcessDocuments indexes every .md and .txt file under dir and returns
// the total chunk count.
func (s *System) ProcessDocuments(ctx context.Context, dir string) (int, error) {
	var total int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		n, err := s.AddText(ctx, filepath.Base(path), string(data))
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("process documents in %s: %w", dir, err)
	}

	s.logger.Info("documents processed", "dir", dir, "chunks", total)
	return total, nil
}

// Search retrieves documents for the query. The result count is capped at
// the system's max, 1 by default, regardless of n. When noise is enabled
// the query vector is perturbed with the same seeded noise on every call.
func (s *System) Search(ctx context.Context, query string, n int) ([]vectorstore.Result, error) {
	if n <= 0 || n > s.maxResults {
		n = s.maxResults
	}

	opts := []vectorstore.SearchOption{vectorstore.WithTopK(n)}
	if s.noise {
		opts = append(opts, vectorstore.WithQueryVectorTransform(GaussianNoise(s.noiseSeed, s.noiseSigma)))
	}

	results, err := s.store.Search(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search", "query", query, "n", n, "results", len(results), "noise", s.noise)
	return results, nil
}

// Count returns the number of indexed chunks.
func (s *System) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// GaussianNoise returns a transform that adds N(0, sigma) noise to each
// vector component. The generator is re-seeded on every invocation, so the
// same input always produces the same perturbed output.
func GaussianNoise(seed int64, sigma float64) func([]float32) []float32 {
	return func(vec []float32) []float32 {
		rng := rand.New(rand.NewSource(seed))
		out := make([]float32, len(vec))
		for i, v := range vec {
			out[i] = v + float32(rng.NormFloat64()*sigma)
		}
		return out
	}
}
