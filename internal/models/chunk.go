// Package models defines core data structures for chunks, records, queries, and responses.
package models

// Chunk is a bounded piece of document text, sized for embedding.
// Chunks are produced by the chunker and discarded after indexing; only the
// vector index retains the text, as record metadata.
type Chunk struct {
	Text             string `json:"text"`
	Index            int    `json:"index"`
	SourceDocumentID string `json:"source_document_id"`
	SizeBytes        int    `json:"size_bytes"`
}

// RecordMetadata is the opaque metadata stored alongside each vector.
// DocumentID is what delete-by-filter keys on, so removing a document never
// leaves orphaned vectors behind.
type RecordMetadata struct {
	Text       string `json:"text"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Category   string `json:"category"`
	UploadDate string `json:"upload_date"`
	Size       int    `json:"size"`
	DocumentID string `json:"document_id"`
}

// IndexedRecord is a single (id, vector, metadata) triple in the vector index.
// IDs follow the "<documentID>_chunk_<index>" scheme so upserting the same
// document overwrites its previous chunks.
type IndexedRecord struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata RecordMetadata `json:"metadata"`
}

// SearchMatch is a single similarity hit. Score is cosine-similarity-like,
// clamped to [0,1], and results are ordered by descending score.
type SearchMatch struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	Filename string  `json:"filename"`
	Category string  `json:"category"`
}

// IndexStats summarizes the vector index contents.
type IndexStats struct {
	TotalVectors  int     `json:"total_vectors"`
	Dimension     int     `json:"dimension"`
	IndexFullness float64 `json:"index_fullness"`
}
