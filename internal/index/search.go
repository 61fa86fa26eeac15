package index

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/docbuddy/docbuddy/internal/embedding"
)

// SearchText embeds the query and runs a top-k search, memoizing the
// result in the index's query cache. A cache hit returns the ranked
// list stored at insertion time; because a built index is immutable,
// this is identical to what a fresh search would return. The cache key
// combines a hash of the query text with k.
func (idx *Index) SearchText(ctx context.Context, query string, k int, provider embedding.Provider) ([]SearchResult, error) {
	if !idx.built || len(idx.chunks) == 0 {
		return nil, nil
	}

	key := queryKey(query, k)
	if cached, ok := idx.queries.Get(key); ok {
		return cloneResults(cached.([]SearchResult)), nil
	}

	queryVec, err := provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := idx.Search(queryVec, k)
	idx.queries.Set(key, results)
	return cloneResults(results), nil
}

// cloneResults copies a ranked slice so callers can reorder or trim it
// without corrupting the cached entry.
func cloneResults(results []SearchResult) []SearchResult {
	if results == nil {
		return nil
	}
	out := make([]SearchResult, len(results))
	copy(out, results)
	return out
}

// CachedQueries returns the number of memoized query results.
func (idx *Index) CachedQueries() int {
	return idx.queries.Len()
}

// queryKey derives a stable cache key from the query text and result count.
func queryKey(query string, k int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%x:%d", sum, k)
}
