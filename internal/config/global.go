package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is user-level configuration stored in
// ~/.config/docbuddy/config.yml: which model backends to use and how to
// reach them. Secrets come from the environment, not this file.
type GlobalConfig struct {
	EmbeddingBackend string `yaml:"embedding_backend,omitempty"` // "ollama" (default) or "openai"
	EmbeddingModel   string `yaml:"embedding_model,omitempty"`
	ChatBackend      string `yaml:"chat_backend,omitempty"` // "ollama" (default) or "openai"
	ChatModel        string `yaml:"chat_model,omitempty"`
	OllamaURL        string `yaml:"ollama_url,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "docbuddy"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/docbuddy/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads a .env file from the workspace root into the process
// environment, if present. Used for OPENAI_API_KEY and similar secrets;
// existing environment variables win.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// OpenAIKey returns the OpenAI API key from the environment.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
