// Package pipeline runs the complete retrieval-augmented generation flow
// over the TechCorp policy corpus: chunk the documents, store them with
// embeddings, retrieve context for a question, build the augmented prompt,
// and generate an answer.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/raglab/raglab/internal/chunk"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/samples"
	"github.com/raglab/raglab/internal/vectorstore"
)

// Chunking parameters for the policy corpus.
const (
	ChunkSize    = 200
	ChunkOverlap = 50
)

// DefaultTopK is how many chunks are retrieved as context per question.
const DefaultTopK = 3

// Answer is the outcome of one pipeline run.
type Answer struct {
	Question string
	Sources  []vectorstore.Result
	Prompt   string
	Response string
}

// Pipeline wires a vector store and a text generator together.
type Pipeline struct {
	store  *vectorstore.Store
	chat   Chatter
	logger log.Logger
	topK   int
}

// New returns a Pipeline. A nil chat falls back to the canned generator.
func New(store *vectorstore.Store, chat Chatter, logger log.Logger) *Pipeline {
	if chat == nil {
		chat = CannedChat{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{store: store, chat: chat, logger: logger, topK: DefaultTopK}
}

// Index chunks every TechCorp policy with the recursive splitter and stores
// the pieces. It returns the number of chunks stored.
func (p *Pipeline) Index(ctx context.Context) (int, error) {
	splitter := chunk.NewRecursiveSplitter(ChunkSize, ChunkOverlap)

	var docs []vectorstore.Document
	for _, policy := range samples.TechCorpPolicies() {
		for _, c := range splitter.Split(policy.Content) {
			docs = append(docs, vectorstore.Document{
				ID:      fmt.Sprintf("%s_chunk_%d", policy.ID, c.Index),
				Content: c.Text,
				Metadata: map[string]string{
					"title":       policy.Title,
					"category":    policy.Category,
					"source":      policy.ID,
					"chunk_index": strconv.Itoa(c.Index),
				},
			})
		}
	}

	if err := p.store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("index policies: %w", err)
	}
	p.logger.Info("policy corpus indexed", "documents", len(samples.TechCorpPolicies()), "chunks", len(docs))
	return len(docs), nil
}

// Answer retrieves context for the question, builds the augmented prompt,
// and generates a response.
func (p *Pipeline) Answer(ctx context.Context, question string) (*Answer, error) {
	results, err := p.store.Search(ctx, question, vectorstore.WithTopK(p.topK))
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	prompt := BuildPrompt(question, results)
	response, err := p.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	p.logger.Debug("question answered", "question", question, "sources", len(results))
	return &Answer{
		Question: question,
		Sources:  results,
		Prompt:   prompt,
		Response: response,
	}, nil
}

// BuildPrompt assembles the augmented prompt: retrieved chunks labelled by
// source title, then the question and answering instructions.
func BuildPrompt(question string, results []vectorstore.Result) string {
	parts := make([]string, len(results))
	for i, r := range results {
		title := r.Metadata["title"]
		if title == "" {
			title = r.ID
		}
		parts[i] = fmt.Sprintf("Source %d: %s\n%s", i+1, title, r.Content)
	}
	context := strings.Join(parts, "\n\n")

	return fmt.Sprintf(`Based on the following company policies, answer the user's question.

POLICIES:
%s

QUESTION: %s

Please provide a clear, accurate answer based on the policies above.
If the information is not available in the policies, say so.
Include relevant policy details and any limitations or requirements.`, context, question)
}
