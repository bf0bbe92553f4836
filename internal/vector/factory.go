package vector

import (
	"fmt"
	"time"

	"github.com/hyperjump/kotae/internal/config"
)

// IndexType represents the type of vector index backend.
type IndexType string

const (
	// IndexTypeMemory uses in-memory brute-force search with a JSON snapshot.
	// Good for single-node deployments and development.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeQdrant uses a remote Qdrant collection over REST.
	IndexTypeQdrant IndexType = "qdrant"
)

// NewVectorIndex creates a vector index of the configured type. Remote
// backends are wrapped in a LazyIndex so the connection is established by
// the first operation that needs it and the result is memoized; a failed
// connection surfaces as a configuration error on every call.
func NewVectorIndex(cfg *config.VectorConfig, dimensions int) (VectorIndex, error) {
	switch IndexType(cfg.IndexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	case IndexTypeQdrant:
		qcfg := cfg.Qdrant
		return NewLazyIndex(func() (VectorIndex, error) {
			return NewQdrantIndex(QdrantOptions{
				URL:        qcfg.URL,
				APIKey:     qcfg.APIKey,
				Collection: qcfg.Collection,
				Dimensions: dimensions,
				Timeout:    time.Duration(qcfg.TimeoutSeconds) * time.Second,
			})
		}), nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, qdrant)", cfg.IndexType)
	}
}
