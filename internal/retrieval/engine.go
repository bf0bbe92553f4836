// Package retrieval composes the chunker, embedder, and vector index into
// the ingest and query pipelines, and keeps the document registry in step
// with the index.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// Options bounds retrieval behavior.
type Options struct {
	// DefaultTopK is used when a request does not specify one.
	DefaultTopK int
	// MaxTopK caps requested result counts.
	MaxTopK int
}

// Engine orchestrates ingest, retrieval, and removal. All collaborators are
// injected; construct one Engine at process start and share it.
type Engine struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	index    vector.VectorIndex
	registry *storage.Registry
	analyzer *query.Analyzer
	opts     Options
	logger   *zap.Logger
}

// NewEngine creates a retrieval engine. A nil logger disables logging.
func NewEngine(c *chunker.Chunker, e embedding.Embedder, idx vector.VectorIndex, reg *storage.Registry, a *query.Analyzer, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 50
	}
	return &Engine{
		chunker:  c,
		embedder: e,
		index:    idx,
		registry: reg,
		analyzer: a,
		opts:     opts,
		logger:   logger,
	}
}

// Ingest chunks, embeds, and indexes one document, then records it in the
// registry. All chunk records go to the index in a single upsert.
// Re-ingesting an existing id replaces the document: its previous chunks are
// deleted first so a shorter re-upload leaves no stale records above the new
// count. The result is all-or-nothing for the caller: any failure yields
// Success=false with zero chunks reported, and no registry row is written.
func (e *Engine) Ingest(ctx context.Context, req models.IngestRequest) models.IngestResult {
	docID := req.ID
	if docID == "" {
		docID = uuid.New().String()
	}

	chunks := e.chunker.Chunk(docID, req.Content)
	if len(chunks) == 0 {
		e.logger.Warn("no chunks produced", zap.String("document_id", docID), zap.String("filename", req.Filename))
		return models.IngestResult{DocumentID: docID}
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	uploadDate := time.Now()

	// Sequential, in index order: bounds concurrent outbound requests and
	// keeps chunk ordering deterministic in logs.
	records := make([]models.IndexedRecord, len(chunks))
	for i, chunk := range chunks {
		vec, err := e.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			e.logger.Error("embedding failed during ingest",
				zap.String("document_id", docID), zap.Int("chunk", i), zap.Error(err))
			return models.IngestResult{DocumentID: docID}
		}
		records[i] = models.IndexedRecord{
			ID:     fmt.Sprintf("%s_chunk_%d", docID, chunk.Index),
			Vector: vec,
			Metadata: models.RecordMetadata{
				Text:       chunk.Text,
				Filename:   req.Filename,
				ChunkIndex: chunk.Index,
				Category:   category,
				UploadDate: uploadDate.Format(time.RFC3339),
				Size:       chunk.SizeBytes,
				DocumentID: docID,
			},
		}
	}

	// Same-id records are overwritten by the upsert, but records beyond the
	// new chunk count would survive a shorter re-upload.
	if err := e.index.DeleteByFilter(ctx, vector.Filter{vector.FieldDocumentID: docID}); err != nil {
		e.logger.Error("stale chunk delete failed", zap.String("document_id", docID), zap.Error(err))
		return models.IngestResult{DocumentID: docID}
	}
	if err := e.index.Upsert(ctx, records); err != nil {
		e.logger.Error("index upsert failed", zap.String("document_id", docID), zap.Error(err))
		return models.IngestResult{DocumentID: docID}
	}

	doc := &models.Document{
		ID:         docID,
		Filename:   req.Filename,
		Category:   category,
		Size:       len(req.Content),
		ChunkCount: len(chunks),
		UploadDate: uploadDate,
	}
	if err := e.registry.Upsert(ctx, doc); err != nil {
		e.logger.Error("registry upsert failed", zap.String("document_id", docID), zap.Error(err))
		return models.IngestResult{DocumentID: docID}
	}

	e.logger.Info("document ingested",
		zap.String("document_id", docID),
		zap.String("filename", req.Filename),
		zap.Int("chunks", len(chunks)))

	return models.IngestResult{Success: true, ChunksStored: len(chunks), DocumentID: docID}
}

// Retrieve analyzes the query, embeds the expanded search string, and asks
// the index for the top matches. The category filter is skipped for "" and
// "all". Failures come back as an empty slice, never an error: a broken
// query surfaces to the user as "no results".
func (e *Engine) Retrieve(ctx context.Context, searchQuery string, topK int, category string) []models.SearchMatch {
	if topK <= 0 {
		topK = e.opts.DefaultTopK
	}
	if topK > e.opts.MaxTopK {
		topK = e.opts.MaxTopK
	}

	analysis := e.analyzer.Analyze(searchQuery)
	expanded := e.analyzer.BuildSearchQuery(analysis)
	if expanded == "" {
		expanded = analysis.ProcessedQuery
	}
	if expanded == "" {
		return []models.SearchMatch{}
	}

	vec, err := e.embedder.Embed(ctx, expanded)
	if err != nil {
		e.logger.Error("embedding failed during retrieve", zap.Error(err))
		return []models.SearchMatch{}
	}

	filter := vector.Filter{}
	if category != "" && category != vector.FilterAll {
		filter[vector.FieldCategory] = category
	}

	matches, err := e.index.Query(ctx, vec, topK, filter)
	if err != nil {
		e.logger.Error("index query failed", zap.Error(err))
		return []models.SearchMatch{}
	}
	if matches == nil {
		matches = []models.SearchMatch{}
	}
	return matches
}

// Remove deletes every chunk of a document from the index and drops the
// registry row. Returns whether both operations completed without error.
func (e *Engine) Remove(ctx context.Context, documentID string) bool {
	if documentID == "" {
		return false
	}
	if err := e.index.DeleteByFilter(ctx, vector.Filter{vector.FieldDocumentID: documentID}); err != nil {
		e.logger.Error("index delete failed", zap.String("document_id", documentID), zap.Error(err))
		return false
	}
	if _, err := e.registry.Delete(ctx, documentID); err != nil {
		e.logger.Error("registry delete failed", zap.String("document_id", documentID), zap.Error(err))
		return false
	}
	return true
}

// Stats reports index and registry totals.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	indexStats, err := e.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	docCount, err := e.registry.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry count: %w", err)
	}
	return &Stats{
		Documents:     docCount,
		TotalVectors:  indexStats.TotalVectors,
		Dimension:     indexStats.Dimension,
		IndexFullness: indexStats.IndexFullness,
	}, nil
}

// Stats combines registry and index totals.
type Stats struct {
	Documents     int64   `json:"documents"`
	TotalVectors  int     `json:"total_vectors"`
	Dimension     int     `json:"dimension"`
	IndexFullness float64 `json:"index_fullness"`
}
