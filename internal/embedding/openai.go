package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is the default OpenAI embedding model.
	DefaultOpenAIModel = "text-embedding-3-small"

	// openAISmallDimensions is the output size of text-embedding-3-small.
	openAISmallDimensions = 1536

	// openAILargeDimensions is the output size of text-embedding-3-large.
	openAILargeDimensions = 3072
)

// OpenAIProvider generates embeddings using the OpenAI API. Unlike
// Ollama, the API accepts a whole batch in one request.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIProvider creates an OpenAI embedding provider.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	dims := openAISmallDimensions
	if model == "text-embedding-3-large" {
		dims = openAILargeDimensions
	}

	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dims,
	}, nil
}

// Embed generates an embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates one embedding per text in a single API request.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding with index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// ModelName returns the name of the embedding model.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}
