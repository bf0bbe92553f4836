// Package config provides configuration loading and structs for the Kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Vector     VectorConfig     `yaml:"vector"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document registry and vector index snapshot.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// EmbeddingConfig holds embedding backend settings.
// Provider is "googleai" (remote API) or "mock" (deterministic, for development).
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	IndexType string       `yaml:"index_type"`
	Qdrant    QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds connection settings for a remote Qdrant collection.
type QdrantConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	Collection     string `yaml:"collection"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GenerationConfig holds answer-generation backend settings.
type GenerationConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds chunking and search settings.
type RetrievalConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	MinChunkChars int `yaml:"min_chunk_chars"`
	DefaultTopK   int `yaml:"default_top_k"`
	MaxTopK       int `yaml:"max_top_k"`
	ContextChunks int `yaml:"context_chunks"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// API keys left empty in the file are filled from the GOOGLE_AI_API_KEY environment
// variable; the generation key falls back to the embedding key (same account).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("GOOGLE_AI_API_KEY")
	}
	if cfg.Generation.APIKey == "" {
		cfg.Generation.APIKey = cfg.Embedding.APIKey
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
