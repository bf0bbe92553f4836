package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync/atomic"

	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

// Fallback wraps a primary Embedder and converts every failure into a
// deterministic pseudo-random unit vector of the configured dimension, so
// the pipeline never blocks on backend unavailability. Failures are logged
// and counted but never surfaced to the caller.
type Fallback struct {
	primary       Embedder
	dimensions    int
	logger        *zap.Logger
	fallbackCount atomic.Int64
}

// NewFallback wraps primary. logger may be nil.
func NewFallback(primary Embedder, logger *zap.Logger) *Fallback {
	return &Fallback{
		primary:    primary,
		dimensions: primary.Dimensions(),
		logger:     logger,
	}
}

// Embed returns the primary embedding, or a degraded-mode vector on any
// failure. The error result is always nil.
func (f *Fallback) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := f.primary.Embed(ctx, text)
	if err == nil {
		return emb, nil
	}
	f.fallbackCount.Add(1)
	if f.logger != nil {
		f.logger.Warn("embedding backend failed, using fallback vector",
			zap.String("text", utils.Truncate(text, 100)),
			zap.Error(err))
	}
	return fallbackVector(text, f.dimensions), nil
}

// EmbedBatch embeds each text independently so one backend failure degrades
// only that chunk.
func (f *Fallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, _ := f.Embed(ctx, text)
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (f *Fallback) Dimensions() int {
	return f.dimensions
}

// FallbackCount reports how many embeds were served by the fallback since
// startup. Telemetry only; callers cannot tell individual vectors apart.
func (f *Fallback) FallbackCount() int64 {
	return f.fallbackCount.Load()
}

// Close closes the primary embedder.
func (f *Fallback) Close() error {
	return f.primary.Close()
}

// fallbackVector produces a pseudo-random unit vector seeded by the text, so
// retries on the same input yield the same vector.
func fallbackVector(text string, dimensions int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	vec := make([]float32, dimensions)
	for i := range vec {
		vec[i] = float32(rng.Float64() - 0.5)
	}
	utils.NormalizeL2(vec)
	return vec
}
