// Package vector provides vector index backends with metadata filtering.
package vector

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Filter restricts a query or delete to records whose metadata matches every
// listed field exactly. A nil filter, or the reserved value "all" for a
// field, means no restriction on that field.
type Filter map[string]string

// Unrestricted reports whether f imposes no constraint at all.
func (f Filter) Unrestricted() bool {
	for _, v := range f {
		if v != "" && v != FilterAll {
			return false
		}
	}
	return true
}

// FilterAll is the reserved filter value meaning "no restriction".
const FilterAll = "all"

// Metadata field names recognized by filters.
const (
	FieldCategory   = "category"
	FieldFilename   = "filename"
	FieldDocumentID = "document_id"
)

// VectorIndex stores (id, vector, metadata) triples and answers similarity
// queries over them. Upsert overwrites records with the same id; Query
// returns at most topK matches in descending score order.
type VectorIndex interface {
	Upsert(ctx context.Context, records []models.IndexedRecord) error
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]models.SearchMatch, error)
	DeleteByFilter(ctx context.Context, filter Filter) error
	Stats(ctx context.Context) (*models.IndexStats, error)
	Save(path string) error
	Load(path string) error
	Close() error
}

// matchesFilter checks one record's metadata against a filter.
func matchesFilter(meta *models.RecordMetadata, filter Filter) bool {
	for field, want := range filter {
		if want == "" || want == FilterAll {
			continue
		}
		switch field {
		case FieldCategory:
			if meta.Category != want {
				return false
			}
		case FieldFilename:
			if meta.Filename != want {
				return false
			}
		case FieldDocumentID:
			if meta.DocumentID != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}
