package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/index"
)

// termProvider embeds text as word counts over a tiny vocabulary, so
// retrieval behavior is deterministic without a model server.
type termProvider struct {
	vocab      []string
	embedCalls int
}

func newTermProvider() *termProvider {
	return &termProvider{
		vocab: []string{"machine", "learning", "deep", "layers", "python", "data", "science", "ai"},
	}
}

func (p *termProvider) vectorFor(text string) []float32 {
	vec := make([]float32, len(p.vocab))
	clean := strings.NewReplacer(".", "", "?", "", ",", "").Replace(strings.ToLower(text))
	for _, w := range strings.Fields(clean) {
		for i, term := range p.vocab {
			if w == term {
				vec[i]++
			}
		}
	}
	return vec
}

func (p *termProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.embedCalls++
	return p.vectorFor(text), nil
}

func (p *termProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = p.vectorFor(t)
	}
	return vectors, nil
}

func (p *termProvider) ModelName() string { return "term-counts" }
func (p *termProvider) Dimensions() int   { return len(p.vocab) }

func builtRetriever(t *testing.T, topK, maxContext int) (*Retriever, *termProvider) {
	t.Helper()
	chunks := []chunker.Chunk{
		{Text: "Machine learning is a subset of AI.", Document: "notes.pdf", Page: 1, StartPos: 0, EndPos: 35},
		{Text: "Deep learning uses many layers.", Document: "notes.pdf", Page: 2, StartPos: 35, EndPos: 66},
		{Text: "Python is used for data science.", Document: "notes.pdf", Page: 3, StartPos: 66, EndPos: 98},
	}
	provider := newTermProvider()
	idx := index.New(16)
	if err := idx.Build(context.Background(), chunks, provider); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewRetriever(provider, idx, topK, maxContext), provider
}

func TestRetriever_Context(t *testing.T) {
	r, _ := builtRetriever(t, 2, 3000)

	ctxStr, citations, err := r.Context(context.Background(), "What is machine learning?")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}

	if !strings.HasPrefix(ctxStr, "[notes.pdf - Page 1]\nMachine learning") {
		t.Errorf("context should lead with the machine learning chunk, got %q", ctxStr)
	}
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(citations))
	}
	if citations[0].Page != 1 {
		t.Errorf("top citation page = %d, want 1", citations[0].Page)
	}
	if citations[0].RelevanceScore < citations[1].RelevanceScore {
		t.Error("citations should follow descending relevance")
	}
}

func TestRetriever_ContextTruncated(t *testing.T) {
	r, _ := builtRetriever(t, 2, 20)

	ctxStr, citations, err := r.Context(context.Background(), "What is machine learning?")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(ctxStr) > 20+len(TruncationMarker) {
		t.Errorf("len(context) = %d, want <= 20 plus marker", len(ctxStr))
	}
	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}
	if citations[0].Text != "Machine learning is a subset of AI." {
		t.Errorf("citation text = %q, want full snippet", citations[0].Text)
	}
}

func TestRetriever_EmptyIndex(t *testing.T) {
	provider := newTermProvider()
	r := NewRetriever(provider, index.New(4), 3, 3000)

	ctxStr, citations, err := r.Context(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if ctxStr != "" || citations != nil {
		t.Errorf("Context() on empty index = (%q, %v), want (\"\", nil)", ctxStr, citations)
	}
}

func TestRetriever_Search(t *testing.T) {
	r, _ := builtRetriever(t, 3, 3000)

	results, err := r.Search(context.Background(), "deep layers")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Search() = %d results, want 3", len(results))
	}
	if !strings.Contains(results[0].Chunk.Text, "Deep learning") {
		t.Errorf("top result = %q, want the deep learning chunk", results[0].Chunk.Text)
	}
}

func TestRetriever_RepeatQueryHitsCache(t *testing.T) {
	r, provider := builtRetriever(t, 2, 3000)
	ctx := context.Background()

	if _, _, err := r.Context(ctx, "python data science"); err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	calls := provider.embedCalls
	if _, _, err := r.Context(ctx, "python data science"); err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if provider.embedCalls != calls {
		t.Errorf("repeat query re-embedded: %d calls, want %d", provider.embedCalls, calls)
	}
}
