package main

import (
	"errors"
	"os"

	"github.com/docbuddy/docbuddy/internal/chat"
	"github.com/docbuddy/docbuddy/internal/config"
	"github.com/docbuddy/docbuddy/internal/embedding"
	"github.com/docbuddy/docbuddy/internal/index"
	"github.com/docbuddy/docbuddy/internal/storage"
)

// mustFindWorkspace locates the workspace root or exits.
// The DOCBUDDY_ROOT environment variable overrides the search start.
func mustFindWorkspace() string {
	start := os.Getenv("DOCBUDDY_ROOT")
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(ExitError, "getting current directory: %v", err)
		}
		start = cwd
	}

	root, err := config.FindWorkspace(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'docbuddy init' to create a workspace.", err)
	}
	return root
}

// mustLoadConfig loads the workspace config or exits.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadGlobal loads global config and the workspace .env, or exits.
func mustLoadGlobal(root string) *config.GlobalConfig {
	if err := config.LoadDotEnv(root); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return global
}

// mustEmbeddingProvider builds the configured embedding provider or exits.
func mustEmbeddingProvider(global *config.GlobalConfig) embedding.Provider {
	switch global.EmbeddingBackend {
	case "", "ollama":
		var opts []embedding.OllamaOption
		if global.OllamaURL != "" {
			opts = append(opts, embedding.WithBaseURL(global.OllamaURL))
		}
		if global.EmbeddingModel != "" {
			opts = append(opts, embedding.WithModel(global.EmbeddingModel))
		}
		return embedding.NewOllamaProvider(opts...)
	case "openai":
		provider, err := embedding.NewOpenAIProvider(config.OpenAIKey(), global.EmbeddingModel)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		return provider
	default:
		exitWithError(ExitConfigError, "unknown embedding backend %q (valid: ollama, openai)", global.EmbeddingBackend)
		return nil
	}
}

// mustGenerator builds the configured answer generator or exits.
func mustGenerator(global *config.GlobalConfig) chat.Generator {
	switch global.ChatBackend {
	case "", "ollama":
		var opts []chat.OllamaOption
		if global.OllamaURL != "" {
			opts = append(opts, chat.WithBaseURL(global.OllamaURL))
		}
		if global.ChatModel != "" {
			opts = append(opts, chat.WithModel(global.ChatModel))
		}
		return chat.NewOllamaGenerator(opts...)
	case "openai":
		gen, err := chat.NewOpenAIGenerator(config.OpenAIKey(), global.ChatModel)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		return gen
	default:
		exitWithError(ExitConfigError, "unknown chat backend %q (valid: ollama, openai)", global.ChatBackend)
		return nil
	}
}

// mustLoadIndex loads the persisted index or exits.
func mustLoadIndex(root string, cfg *config.Config) *index.Index {
	idx, err := index.Load(config.IndexPath(root), cfg.Retrieval.CacheCapacity)
	if err != nil {
		if errors.Is(err, index.ErrIndexNotFound) {
			exitWithError(ExitConfigError, "no index found\n\nRun 'docbuddy ingest <file>' first.")
		}
		exitWithError(ExitError, "loading index: %v", err)
	}
	return idx
}

// mustOpenDB opens the metadata database or exits.
func mustOpenDB(root string) *storage.DB {
	db, err := storage.Open(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
