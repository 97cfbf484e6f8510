// Package embed turns text into dense vectors for similarity search.
//
// Two providers are available: OpenAI for real semantic embeddings and a
// deterministic local provider that needs no network or API key. Either can
// be wrapped in a Cache so repeated texts are only embedded once.
package embed

import (
	"context"
	"errors"
	"hash/fnv"
	"math"

	"github.com/raglab/raglab/internal/lexical"
)

// ErrEmptyInput is returned when there is no text to embed.
var ErrEmptyInput = errors.New("embed: empty input")

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector length this embedder produces.
	Dimension() int
}

// LocalDimension is the vector size of the local embedder.
const LocalDimension = 384

// Local is a deterministic offline embedder. It hashes each token into a
// fixed number of buckets and L2-normalizes the result, so texts sharing
// vocabulary land near each other in vector space. It captures term overlap,
// not meaning; synonyms still end up orthogonal.
type Local struct {
	dim int
}

// NewLocal returns a Local embedder producing LocalDimension-sized vectors.
func NewLocal() *Local {
	return &Local{dim: LocalDimension}
}

// Dimension implements Embedder.
func (l *Local) Dimension() int { return l.dim }

// Embed implements Embedder. It never fails on non-empty input and ignores
// the context; the signature matches the network-backed providers.
func (l *Local) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := lexical.Tokenize(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}

	vec := make([]float32, l.dim)
	for _, t := range tokens {
		h := fnv.New64a()
		h.Write([]byte(t))
		sum := h.Sum64()

		idx := int(sum % uint64(l.dim))
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[idx] += sign
	}
	return normalize(vec), nil
}

// EmbedBatch implements Embedder.
func (l *Local) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := l.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// normalize scales a vector to unit length. The zero vector is returned
// unchanged.
func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
