package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultOllamaURL is the default Ollama API endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is the default generation model.
	DefaultOllamaModel = "llama3.2"

	// DefaultGenerateTimeout is the timeout for generation requests.
	// Generation is much slower than embedding.
	DefaultGenerateTimeout = 2 * time.Minute

	// apiPathGenerate is the Ollama API endpoint for text generation.
	apiPathGenerate = "/api/generate"
)

// OllamaGenerator produces completions using the Ollama API.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// OllamaOption configures an OllamaGenerator.
type OllamaOption func(*OllamaGenerator)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) OllamaOption {
	return func(g *OllamaGenerator) {
		g.baseURL = url
	}
}

// WithModel sets the generation model.
func WithModel(model string) OllamaOption {
	return func(g *OllamaGenerator) {
		g.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) OllamaOption {
	return func(g *OllamaGenerator) {
		g.client.Timeout = timeout
	}
}

// NewOllamaGenerator creates a new Ollama generator.
func NewOllamaGenerator(opts ...OllamaOption) *OllamaGenerator {
	g := &OllamaGenerator{
		baseURL: DefaultOllamaURL,
		model:   DefaultOllamaModel,
		client:  &http.Client{Timeout: DefaultGenerateTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a completion for the prompt.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, respBody)
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Response, nil
}

// ModelName returns the name of the generation model.
func (g *OllamaGenerator) ModelName() string {
	return g.model
}

// ollamaGenerateRequest is the request body for the Ollama generate API.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse is the response from the Ollama generate API.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
}
