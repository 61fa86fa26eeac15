// Package index provides an exact nearest-neighbor index over document
// chunks, searched by cosine similarity.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/docbuddy/docbuddy/internal/cache"
	"github.com/docbuddy/docbuddy/internal/chunker"
	"github.com/docbuddy/docbuddy/internal/embedding"
)

// Errors returned by index operations.
var (
	ErrEmptyCollection    = errors.New("cannot build index from zero chunks")
	ErrIndexNotFound      = errors.New("index file not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
)

// DefaultCacheCapacity bounds the per-index query cache.
const DefaultCacheCapacity = 256

// SearchResult is a chunk together with its cosine similarity to the
// query, in [-1, 1]. Higher is more relevant.
type SearchResult struct {
	Chunk chunker.Chunk `json:"chunk"`
	Score float32       `json:"score"`
}

// Index stores chunk embeddings and answers exact top-k similarity
// queries. Entries are append-only within one Build; rebuilding replaces
// the whole collection and clears the owned query cache. A built index
// is read-only and safe for concurrent searches.
type Index struct {
	modelName  string
	dimensions int
	createdAt  time.Time
	chunks     []chunker.Chunk
	vectors    [][]float32
	queries    *cache.LRU
	built      bool
}

// New creates an empty, unbuilt index whose query cache holds up to
// cacheCapacity entries.
func New(cacheCapacity int) *Index {
	if cacheCapacity < 1 {
		cacheCapacity = DefaultCacheCapacity
	}
	return &Index{queries: cache.NewLRU(cacheCapacity)}
}

// Build embeds all chunk texts with a single batched provider call,
// unit-normalizes the vectors, and stores the (chunk, vector) pairs.
// It returns ErrEmptyCollection for an empty chunk list, leaving the
// index unbuilt; searches against an unbuilt index return no results.
// Any previous contents and all cached query results are discarded.
func (idx *Index) Build(ctx context.Context, chunks []chunker.Chunk, provider embedding.Provider) error {
	if len(chunks) == 0 {
		return ErrEmptyCollection
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := provider.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("provider returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) != provider.Dimensions() {
			return fmt.Errorf("chunk %d: embedding dimension mismatch: got %d, want %d",
				i, len(v), provider.Dimensions())
		}
		Normalize(v)
	}

	idx.modelName = provider.ModelName()
	idx.dimensions = provider.Dimensions()
	idx.createdAt = time.Now()
	idx.chunks = chunks
	idx.vectors = vectors
	idx.built = true
	idx.queries.Clear()
	return nil
}

// Search returns the top-k chunks ranked by descending cosine
// similarity to the query vector. k is clamped to the number of indexed
// chunks; ties keep insertion order. An unbuilt or empty index returns
// an empty result set, never an error.
func (idx *Index) Search(queryVec []float32, k int) []SearchResult {
	if !idx.built || len(idx.chunks) == 0 || k <= 0 {
		return nil
	}
	if len(queryVec) != idx.dimensions {
		return nil
	}

	query := make([]float32, len(queryVec))
	copy(query, queryVec)
	Normalize(query)

	results := make([]SearchResult, len(idx.chunks))
	for i := range idx.chunks {
		results[i] = SearchResult{
			Chunk: idx.chunks[i],
			Score: dot(query, idx.vectors[i]),
		}
	}

	// Stable sort preserves insertion order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Built reports whether the index has been populated.
func (idx *Index) Built() bool {
	return idx.built
}

// ModelName returns the embedding model the index was built with.
func (idx *Index) ModelName() string {
	return idx.modelName
}

// Dimensions returns the vector dimensions of the index.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// CreatedAt returns when the index was built.
func (idx *Index) CreatedAt() time.Time {
	return idx.createdAt
}

// Normalize scales v to unit L2 norm in place. A zero vector is left
// unchanged rather than dividing by zero.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// dot computes the inner product of two equal-length vectors. For
// unit-normalized vectors this equals their cosine similarity.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
