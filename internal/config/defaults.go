package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/documents.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/kotae/data/indices/vectors.json"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "googleai"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "embedding-001"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Vector.Qdrant.Collection == "" {
		cfg.Vector.Qdrant.Collection = "knowledge-base"
	}
	if cfg.Vector.Qdrant.TimeoutSeconds == 0 {
		cfg.Vector.Qdrant.TimeoutSeconds = 15
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = cfg.Embedding.BaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gemini-pro"
	}
	if cfg.Generation.MaxOutputTokens == 0 {
		cfg.Generation.MaxOutputTokens = 1024
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 1000
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 200
	}
	if cfg.Retrieval.MinChunkChars == 0 {
		cfg.Retrieval.MinChunkChars = 50
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 5
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 50
	}
	if cfg.Retrieval.ContextChunks == 0 {
		cfg.Retrieval.ContextChunks = 3
	}
}
