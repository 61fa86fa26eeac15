package retrieval

import (
	"context"

	"github.com/docbuddy/docbuddy/internal/embedding"
	"github.com/docbuddy/docbuddy/internal/index"
)

// Retriever ties an embedding provider, a built index, and an assembler
// into the query-time pipeline: embed, search (cached), assemble.
type Retriever struct {
	provider  embedding.Provider
	index     *index.Index
	assembler *Assembler
	topK      int
}

// NewRetriever creates a retriever returning up to topK chunks per
// query, assembled within maxContextLength characters.
func NewRetriever(provider embedding.Provider, idx *index.Index, topK, maxContextLength int) *Retriever {
	if topK < 1 {
		topK = 1
	}
	return &Retriever{
		provider:  provider,
		index:     idx,
		assembler: NewAssembler(maxContextLength),
		topK:      topK,
	}
}

// Search returns the ranked chunks for a query without assembling them.
func (r *Retriever) Search(ctx context.Context, query string) ([]index.SearchResult, error) {
	return r.index.SearchText(ctx, query, r.topK, r.provider)
}

// Context retrieves the top chunks for a query and assembles them into
// a bounded context string with citations. An empty context and nil
// citations mean no relevant content was found.
func (r *Retriever) Context(ctx context.Context, query string) (string, []Citation, error) {
	results, err := r.index.SearchText(ctx, query, r.topK, r.provider)
	if err != nil {
		return "", nil, err
	}
	contextStr, citations := r.assembler.Assemble(results)
	return contextStr, citations, nil
}

// Index returns the retriever's underlying index.
func (r *Retriever) Index() *index.Index {
	return r.index
}
