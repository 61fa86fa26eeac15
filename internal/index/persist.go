package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docbuddy/docbuddy/internal/chunker"
)

// CurrentVersion is the on-disk index format version. Increment when
// making breaking changes to the snapshot layout.
const CurrentVersion = 1

// snapshot is the gob-encoded on-disk form of an Index. The query cache
// is deliberately not persisted; a loaded index starts with a cold cache.
type snapshot struct {
	Version    int
	ModelName  string
	Dimensions int
	CreatedAt  time.Time
	Chunks     []chunker.Chunk
	Vectors    [][]float32
}

// Save persists the index to path using GOB encoding. The file is
// written to a temp path and renamed for atomicity.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	snap := snapshot{
		Version:    CurrentVersion,
		ModelName:  idx.modelName,
		Dimensions: idx.dimensions,
		CreatedAt:  idx.createdAt,
		Chunks:     idx.chunks,
		Vectors:    idx.vectors,
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads a persisted index from path. The loaded index gets a fresh
// query cache of the given capacity. Returns ErrIndexNotFound if no
// index file exists and ErrUnsupportedVersion for incompatible formats.
func Load(path string, cacheCapacity int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	if snap.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'docbuddy ingest')",
			ErrUnsupportedVersion, snap.Version, CurrentVersion)
	}
	if len(snap.Chunks) != len(snap.Vectors) {
		return nil, fmt.Errorf("corrupt index: %d chunks but %d vectors", len(snap.Chunks), len(snap.Vectors))
	}

	idx := New(cacheCapacity)
	idx.modelName = snap.ModelName
	idx.dimensions = snap.Dimensions
	idx.createdAt = snap.CreatedAt
	idx.chunks = snap.Chunks
	idx.vectors = snap.Vectors
	idx.built = len(snap.Chunks) > 0
	return idx, nil
}
