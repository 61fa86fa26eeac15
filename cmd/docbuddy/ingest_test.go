package main

import (
	"context"
	"testing"

	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/embedding"
	"github.com/docbuddy/docbuddy/internal/index"
)

type stubProvider struct {
	model string
	dims  int
}

func (p *stubProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	vec := make([]float32, p.dims)
	vec[0] = 1
	return vec, nil
}

func (p *stubProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, p.dims)
		vectors[i][0] = 1
	}
	return vectors, nil
}

func (p *stubProvider) ModelName() string { return p.model }
func (p *stubProvider) Dimensions() int   { return p.dims }

var _ embedding.Provider = (*stubProvider)(nil)

func TestIndexMatchesProvider(t *testing.T) {
	builder := &stubProvider{model: "all-minilm:l6-v2", dims: 4}
	idx := index.New(4)
	chunks := []chunker.Chunk{{Text: "some text", Document: "d", Page: 1, EndPos: 9}}
	if err := idx.Build(context.Background(), chunks, builder); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !indexMatchesProvider(idx, builder) {
		t.Error("index built by the provider should match it")
	}
	if indexMatchesProvider(idx, &stubProvider{model: "text-embedding-3-small", dims: 1536}) {
		t.Error("a switched backend must not match the persisted index")
	}
	if indexMatchesProvider(idx, &stubProvider{model: "all-minilm:l6-v2", dims: 8}) {
		t.Error("a dimension change must not match the persisted index")
	}
}
