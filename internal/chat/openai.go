package chat

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the default OpenAI chat model.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIGenerator produces completions using the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI generator.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate produces a completion for the prompt.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the generation model.
func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
