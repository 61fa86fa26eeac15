// Package embedding provides vector embedding generation for text.
package embedding

import "context"

// Provider generates embeddings from text. Implementations talk to an
// external model service; failures propagate to the caller unmodified
// and unretried.
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the vector dimensions the provider produces.
	Dimensions() int
}
