package analyze

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAnalyzer sends the prompt to an OpenAI-compatible chat API. Unlike
// the claude CLI it cannot inspect the working tree, so callers should feed
// it the raw patch text rather than a git-diff instruction.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer builds an analyzer for the given key and model. baseURL
// may be empty for api.openai.com, or point at any compatible endpoint.
func NewOpenAIAnalyzer(apiKey, baseURL, model string) *OpenAIAnalyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAnalyzer) Name() string { return "openai" }

// Analyze sends the prompt as a single user message. dir is ignored.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, dir, prompt string, out io.Writer) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := resp.Choices[0].Message.Content
	fmt.Fprintln(out, text)
	return text, nil
}
