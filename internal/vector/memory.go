package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// memoryCapacity is the nominal capacity used to report index fullness.
// The index has no hard limit; fullness is a dashboard signal only.
const memoryCapacity = 1_000_000

// MemoryIndex is an in-memory vector index using brute-force inner product
// search with metadata filtering. Suitable for single-node deployments and
// tests; use the qdrant backend for large corpora.
type MemoryIndex struct {
	dimensions int
	records    map[string]models.IndexedRecord
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		records:    make(map[string]models.IndexedRecord),
	}, nil
}

// Upsert inserts records, overwriting any existing record with the same id.
func (m *MemoryIndex) Upsert(ctx context.Context, records []models.IndexedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record id must not be empty")
		}
		if len(rec.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(rec.Vector), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, rec.Vector)
		rec.Vector = vec
		m.records[rec.ID] = rec
	}
	return nil
}

// Query returns up to topK matches in descending score order, restricted to
// records matching filter. Scores are clamped to [0,1].
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]models.SearchMatch, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if topK <= 0 || len(m.records) == 0 {
		return nil, nil
	}
	matches := make([]models.SearchMatch, 0, len(m.records))
	for _, rec := range m.records {
		if !matchesFilter(&rec.Metadata, filter) {
			continue
		}
		matches = append(matches, models.SearchMatch{
			ID:       rec.ID,
			Score:    clampScore(innerProduct(vector, rec.Vector)),
			Text:     rec.Metadata.Text,
			Filename: rec.Metadata.Filename,
			Category: rec.Metadata.Category,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByFilter removes every record whose metadata matches filter.
// An unrestricted filter is rejected to avoid accidental index wipes.
func (m *MemoryIndex) DeleteByFilter(ctx context.Context, filter Filter) error {
	if filter.Unrestricted() {
		return fmt.Errorf("refusing to delete with unrestricted filter")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.records {
		if matchesFilter(&rec.Metadata, filter) {
			delete(m.records, id)
		}
	}
	return nil
}

// Stats returns vector count, dimension, and nominal fullness.
func (m *MemoryIndex) Stats(ctx context.Context) (*models.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fullness := float64(len(m.records)) / float64(memoryCapacity)
	if fullness > 1 {
		fullness = 1
	}
	return &models.IndexStats{
		TotalVectors:  len(m.records),
		Dimension:     m.dimensions,
		IndexFullness: fullness,
	}, nil
}

// snapshot is the on-disk representation for Save/Load.
type snapshot struct {
	Dimensions int                    `json:"dimensions"`
	Records    []models.IndexedRecord `json:"records"`
}

// Save persists the index contents to path as JSON. Directory is created if
// needed. An empty path is a no-op.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	snap := snapshot{Dimensions: m.dimensions, Records: make([]models.IndexedRecord, 0, len(m.records))}
	for _, rec := range m.records {
		snap.Records = append(snap.Records, rec)
	}
	m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// Load replaces the in-memory contents with the snapshot at path. Dimensions
// must match. A missing file is not an error; the index stays empty.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	if snap.Dimensions != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", snap.Dimensions, m.dimensions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]models.IndexedRecord, len(snap.Records))
	for _, rec := range snap.Records {
		m.records[rec.ID] = rec
	}
	return nil
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

// innerProduct returns the dot product (cosine similarity for unit vectors).
func innerProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}
