package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/samples"
	"github.com/raglab/raglab/internal/vectorstore"
)

// recordingChat captures the prompt it was handed.
type recordingChat struct {
	prompt string
}

func (r *recordingChat) Complete(_ context.Context, prompt string) (string, error) {
	r.prompt = prompt
	return "recorded answer", nil
}

func newTestPipeline(t *testing.T, chat Chatter) *Pipeline {
	t.Helper()
	backend, err := vectorstore.NewChromem("techcorp_policies")
	if err != nil {
		t.Fatalf("NewChromem: %v", err)
	}
	store := vectorstore.New(embed.NewLocal(), backend, log.NewNop())
	t.Cleanup(func() { store.Close() })
	return New(store, chat, log.NewNop())
}

func TestPipelineIndex(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil)

	n, err := p.Index(ctx)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if n <= len(samples.TechCorpPolicies()) {
		t.Errorf("indexed %d chunks, want more than one per policy", n)
	}

	count, err := p.store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != n {
		t.Errorf("store holds %d chunks, Index reported %d", count, n)
	}
}

func TestPipelineAnswer(t *testing.T) {
	ctx := context.Background()
	chat := &recordingChat{}
	p := newTestPipeline(t, chat)

	if _, err := p.Index(ctx); err != nil {
		t.Fatalf("Index: %v", err)
	}

	answer, err := p.Answer(ctx, "How many vacation days do I get per year?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if answer.Response != "recorded answer" {
		t.Errorf("response = %q, want the generator output", answer.Response)
	}
	if len(answer.Sources) == 0 || len(answer.Sources) > DefaultTopK {
		t.Errorf("got %d sources, want between 1 and %d", len(answer.Sources), DefaultTopK)
	}
	if answer.Prompt != chat.prompt {
		t.Error("answer prompt differs from what the generator received")
	}
	if !strings.Contains(chat.prompt, "QUESTION: How many vacation days do I get per year?") {
		t.Errorf("prompt missing the question:\n%s", chat.prompt)
	}

	// Vocabulary overlap should pull in the vacation policy.
	var titles []string
	for _, s := range answer.Sources {
		titles = append(titles, s.Metadata["title"])
	}
	found := false
	for _, title := range titles {
		if title == "Vacation and PTO Policy" {
			found = true
		}
	}
	if !found {
		t.Errorf("sources %v do not include the vacation policy", titles)
	}
}

func TestPipelineCannedDefault(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil)

	if _, err := p.Index(ctx); err != nil {
		t.Fatalf("Index: %v", err)
	}
	answer, err := p.Answer(ctx, "What is the travel expense policy?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !strings.Contains(answer.Response, "Based on the company policies provided") {
		t.Errorf("canned response missing expected text:\n%s", answer.Response)
	}
}

func TestBuildPrompt(t *testing.T) {
	results := []vectorstore.Result{
		{
			Document: vectorstore.Document{
				ID:       "policy_005_chunk_0",
				Content:  "Full-time employees accrue 15 days of paid time off per year.",
				Metadata: map[string]string{"title": "Vacation and PTO Policy"},
			},
		},
		{
			Document: vectorstore.Document{
				ID:      "untitled_chunk",
				Content: "Chunk with no title metadata.",
			},
		},
	}

	prompt := BuildPrompt("How many vacation days do I get?", results)

	for _, want := range []string{
		"Source 1: Vacation and PTO Policy",
		"Full-time employees accrue 15 days of paid time off per year.",
		"Source 2: untitled_chunk",
		"QUESTION: How many vacation days do I get?",
		"Based on the following company policies",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if strings.Index(prompt, "Source 1:") > strings.Index(prompt, "Source 2:") {
		t.Error("sources out of order in prompt")
	}
}
