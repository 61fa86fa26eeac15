package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRetrieval_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Retrieval)
		wantErr bool
	}{
		{"defaults are valid", func(r *Retrieval) {}, false},
		{"zero chunk size", func(r *Retrieval) { r.ChunkSize = 0 }, true},
		{"negative overlap", func(r *Retrieval) { r.ChunkOverlap = -1 }, true},
		{"overlap equals chunk size", func(r *Retrieval) { r.ChunkOverlap = r.ChunkSize }, true},
		{"zero top_k", func(r *Retrieval) { r.TopK = 0 }, true},
		{"zero context budget", func(r *Retrieval) { r.MaxContextLength = 0 }, true},
		{"zero cache capacity", func(r *Retrieval) { r.CacheCapacity = 0 }, true},
		{"zero history size", func(r *Retrieval) { r.HistorySize = 0 }, true},
		{"minimal valid", func(r *Retrieval) {
			*r = Retrieval{ChunkSize: 1, ChunkOverlap: 0, TopK: 1, MaxContextLength: 1, CacheCapacity: 1, HistorySize: 1}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRetrieval()
			tt.mutate(&r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(DocbuddyPath(root), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Retrieval.ChunkSize = 500
	cfg.Retrieval.TopK = 5
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Retrieval.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", loaded.Retrieval.ChunkSize)
	}
	if loaded.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", loaded.Retrieval.TopK)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retrieval != DefaultRetrieval() {
		t.Errorf("Load() = %+v, want defaults", cfg.Retrieval)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(DocbuddyPath(root), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize + 1
	if err := cfg.Save(root); err == nil {
		t.Error("Save() should reject an invalid config")
	}
}

func TestFindWorkspace(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, DocbuddyDir), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("FindWorkspace() error = %v", err)
	}
	// Resolve symlinks so macOS /private/var tempdirs compare equal.
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(found)
	if gotRoot != wantRoot {
		t.Errorf("FindWorkspace() = %q, want %q", gotRoot, wantRoot)
	}
}

func TestFindWorkspace_NotFound(t *testing.T) {
	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("FindWorkspace() should fail outside a workspace")
	}
}

func TestWorkspacePaths(t *testing.T) {
	if got := IndexPath("/w"); got != filepath.Join("/w", DocbuddyDir, IndexFile) {
		t.Errorf("IndexPath = %q", got)
	}
	if got := DBPath("/w"); got != filepath.Join("/w", DocbuddyDir, DBFile) {
		t.Errorf("DBPath = %q", got)
	}
}
