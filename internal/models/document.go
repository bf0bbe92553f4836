package models

import "time"

// Document is a registry row for an ingested document. The document body is
// not kept here; chunk text lives in the vector index metadata.
type Document struct {
	ID         string    `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	Category   string    `json:"category" db:"category"`
	Size       int       `json:"size" db:"size"`
	ChunkCount int       `json:"chunk_count" db:"chunk_count"`
	UploadDate time.Time `json:"upload_date" db:"upload_date"`
}

// IngestRequest is the input for ingesting one document.
// Content must already be extracted plain text or markdown; binary formats
// are handled by an external extraction service before they reach the API.
type IngestRequest struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
}

// IngestResult reports the outcome of an ingest. The operation is
// all-or-nothing from the caller's perspective: on any failure Success is
// false and ChunksStored is zero.
type IngestResult struct {
	Success      bool   `json:"success"`
	ChunksStored int    `json:"chunks_stored"`
	DocumentID   string `json:"document_id,omitempty"`
}
