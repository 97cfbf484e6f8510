package embed

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned when the OpenAI embedder is constructed
// without a key.
var ErrMissingAPIKey = errors.New("embed: missing OpenAI API key")

// Dimensions of the OpenAI embedding models the labs use.
const (
	OpenAISmallDimension = 1536
	OpenAILargeDimension = 3072
)

// OpenAI embeds text with the OpenAI embeddings API.
type OpenAI struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAI returns an OpenAI embedder for the given model. An empty model
// defaults to text-embedding-3-small.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	dim := OpenAISmallDimension
	if openai.EmbeddingModel(model) == openai.LargeEmbedding3 {
		dim = OpenAILargeDimension
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(openai.DefaultConfig(apiKey)),
		model:  openai.EmbeddingModel(model),
		dim:    dim,
	}, nil
}

// Dimension implements Embedder.
func (o *OpenAI) Dimension() int { return o.dim }

// Embed implements Embedder.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements Embedder. All texts go out in a single API request.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("create embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
