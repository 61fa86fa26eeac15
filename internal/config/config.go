// Package config handles workspace and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace layout constants.
const (
	DocbuddyDir = ".docbuddy"
	ConfigFile  = "config.json"
	IndexFile   = "index.gob"
	DBFile      = "docbuddy.db"
)

// Retrieval holds the tunable parameters of the retrieval core. All
// sizes are in characters.
type Retrieval struct {
	ChunkSize        int `json:"chunk_size"`
	ChunkOverlap     int `json:"chunk_overlap"`
	TopK             int `json:"top_k"`
	MaxContextLength int `json:"max_context_length"`
	CacheCapacity    int `json:"cache_capacity"`
	HistorySize      int `json:"history_size"`
}

// DefaultRetrieval returns the default retrieval parameters.
func DefaultRetrieval() Retrieval {
	return Retrieval{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             3,
		MaxContextLength: 3000,
		CacheCapacity:    256,
		HistorySize:      20,
	}
}

// Validate checks the retrieval parameters for internal consistency.
func (r Retrieval) Validate() error {
	if r.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1, got %d", r.ChunkSize)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, %d), got %d", r.ChunkSize, r.ChunkOverlap)
	}
	if r.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", r.TopK)
	}
	if r.MaxContextLength < 1 {
		return fmt.Errorf("max_context_length must be at least 1, got %d", r.MaxContextLength)
	}
	if r.CacheCapacity < 1 {
		return fmt.Errorf("cache_capacity must be at least 1, got %d", r.CacheCapacity)
	}
	if r.HistorySize < 1 {
		return fmt.Errorf("history_size must be at least 1, got %d", r.HistorySize)
	}
	return nil
}

// Config is workspace configuration stored in .docbuddy/config.json.
type Config struct {
	Retrieval Retrieval `json:"retrieval"`
}

// DefaultConfig returns a config with default retrieval parameters.
func DefaultConfig() *Config {
	return &Config{Retrieval: DefaultRetrieval()}
}

// DocbuddyPath returns the path to the .docbuddy directory from a root path.
func DocbuddyPath(root string) string {
	return filepath.Join(root, DocbuddyDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, DocbuddyDir, ConfigFile)
}

// IndexPath returns the path to the persisted vector index from a root path.
func IndexPath(root string) string {
	return filepath.Join(root, DocbuddyDir, IndexFile)
}

// DBPath returns the path to the metadata database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, DocbuddyDir, DBFile)
}

// IsWorkspace checks if the given path contains a docbuddy workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(DocbuddyPath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a docbuddy
// workspace. Returns the workspace root or an error if none is found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a docbuddy workspace (no %s directory found)", DocbuddyDir)
		}
		abs = parent
	}
}

// Load reads workspace configuration from the given root, validating
// the retrieval parameters. A missing config file yields the defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Retrieval.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save writes workspace configuration to the given root.
func (c *Config) Save(root string) error {
	if err := c.Retrieval.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
