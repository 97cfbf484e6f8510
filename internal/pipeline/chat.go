package pipeline

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Chatter generates an answer from an augmented prompt.
// Implementations: OpenAIChat, CannedChat.
type Chatter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIChat generates answers with the OpenAI chat API.
type OpenAIChat struct {
	client *openai.Client
	model  string
}

// NewOpenAIChat returns an OpenAIChat for the given model. An empty model
// defaults to gpt-4o-mini.
func NewOpenAIChat(apiKey, model string) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, errors.New("pipeline: missing OpenAI API key")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIChat{
		client: openai.NewClientWithConfig(openai.DefaultConfig(apiKey)),
		model:  model,
	}, nil
}

// Complete implements Chatter.
func (o *OpenAIChat) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant answering questions about company policies.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CannedChat is an offline stand-in for an LLM. It returns a fixed answer
// so the pipeline can run end to end without an API key; the interesting
// output is the retrieved sources and the prompt, not the generation.
type CannedChat struct{}

// Complete implements Chatter.
func (CannedChat) Complete(_ context.Context, _ string) (string, error) {
	return `Based on the company policies provided, here's the answer to your question:

The relevant policies contain information about various company guidelines and procedures.
The retrieved context provides specific details that can help answer your question.

Key points from the policies:
- Multiple policy sources were consulted
- Specific requirements and limitations are included

Please refer to the specific policy documents for complete details and any recent updates.`, nil
}
