package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
embedding:
  provider: "mock"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Embedding.Provider != "mock" {
		t.Errorf("provider = %s", cfg.Embedding.Provider)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/db/documents.db"
  vector_index_path: "./data/indices/vectors.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "documents.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantIdx := filepath.Join(dir, "data", "indices", "vectors.json")
	if cfg.Storage.VectorIndexPath != wantIdx {
		t.Errorf("vector_index_path = %s, want %s", cfg.Storage.VectorIndexPath, wantIdx)
	}
}

func TestLoad_generationKeyFallsBackToEmbeddingKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  api_key: "shared-key"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.APIKey != "shared-key" {
		t.Errorf("generation api key = %q, want the embedding key", cfg.Generation.APIKey)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != "googleai" {
		t.Errorf("default provider: got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Vector.IndexType != "memory" {
		t.Errorf("default index type: got %s", cfg.Vector.IndexType)
	}
	if cfg.Retrieval.ChunkSize != 1000 || cfg.Retrieval.ChunkOverlap != 200 {
		t.Errorf("default chunking: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.DefaultTopK != 5 || cfg.Retrieval.MaxTopK != 50 {
		t.Errorf("default top-k bounds: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.ContextChunks != 3 {
		t.Errorf("default context chunks: got %d", cfg.Retrieval.ContextChunks)
	}
	if cfg.Generation.Model != "gemini-pro" {
		t.Errorf("default generation model: got %s", cfg.Generation.Model)
	}
}
