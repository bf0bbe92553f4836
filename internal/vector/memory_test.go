package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func record(id, docID, category string, vec []float32) models.IndexedRecord {
	return models.IndexedRecord{
		ID:     id,
		Vector: vec,
		Metadata: models.RecordMetadata{
			Text:       "text of " + id,
			Filename:   docID + ".txt",
			Category:   category,
			DocumentID: docID,
		},
	}
}

func TestMemoryIndex_UpsertQuery(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	err = idx.Upsert(ctx, []models.IndexedRecord{
		record("a", "d1", "hr", []float32{1, 0, 0}),
		record("b", "d1", "hr", []float32{0.9, 0.1, 0}),
		record("c", "d2", "it", []float32{0, 1, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "a" {
		t.Errorf("top match should be a, got %s", matches[0].ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not in descending score order at %d", i)
		}
	}
	for _, m := range matches {
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("score %f outside [0,1]", m.Score)
		}
	}
}

func TestMemoryIndex_UpsertOverwrites(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []models.IndexedRecord{record("x", "d1", "hr", []float32{1, 0})})
	_ = idx.Upsert(ctx, []models.IndexedRecord{record("x", "d1", "it", []float32{0, 1})})

	stats, _ := idx.Stats(ctx)
	if stats.TotalVectors != 1 {
		t.Errorf("TotalVectors = %d, want 1", stats.TotalVectors)
	}
	matches, _ := idx.Query(ctx, []float32{0, 1}, 1, nil)
	if len(matches) != 1 || matches[0].Category != "it" {
		t.Error("upsert did not overwrite existing record")
	}
}

func TestMemoryIndex_CategoryFilter(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []models.IndexedRecord{
		record("a", "d1", "hr", []float32{1, 0}),
		record("b", "d2", "it", []float32{1, 0}),
		record("c", "d3", "hr", []float32{0.5, 0.5}),
	})

	matches, err := idx.Query(ctx, []float32{1, 0}, 10, Filter{FieldCategory: "hr"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 hr matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Category != "hr" {
			t.Errorf("filter leaked category %q", m.Category)
		}
	}

	// The reserved "all" value means unrestricted.
	matches, _ = idx.Query(ctx, []float32{1, 0}, 10, Filter{FieldCategory: FilterAll})
	if len(matches) != 3 {
		t.Errorf("category=all should be unrestricted, got %d matches", len(matches))
	}
}

func TestMemoryIndex_DeleteByFilter(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []models.IndexedRecord{
		record("d1_chunk_0", "d1", "hr", []float32{1, 0}),
		record("d1_chunk_1", "d1", "hr", []float32{0, 1}),
		record("d1_chunk_2", "d1", "hr", []float32{0.7, 0.7}),
		record("d2_chunk_0", "d2", "hr", []float32{0.5, 0.5}),
	})

	if err := idx.DeleteByFilter(ctx, Filter{FieldDocumentID: "d1"}); err != nil {
		t.Fatal(err)
	}
	stats, _ := idx.Stats(ctx)
	if stats.TotalVectors != 1 {
		t.Errorf("TotalVectors = %d, want 1 (delete by exactly 3)", stats.TotalVectors)
	}
	matches, _ := idx.Query(ctx, []float32{1, 0}, 10, nil)
	for _, m := range matches {
		if m.ID != "d2_chunk_0" {
			t.Errorf("orphaned vector survived delete: %s", m.ID)
		}
	}
}

func TestMemoryIndex_DeleteUnrestrictedRefused(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	if err := idx.DeleteByFilter(context.Background(), nil); err == nil {
		t.Fatal("expected error on unrestricted delete")
	}
	if err := idx.DeleteByFilter(context.Background(), Filter{FieldCategory: FilterAll}); err == nil {
		t.Fatal("expected error on category=all delete")
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()
	err := idx.Upsert(ctx, []models.IndexedRecord{record("a", "d", "c", []float32{1, 0})})
	if err == nil {
		t.Fatal("expected dimension mismatch on upsert")
	}
	if _, err := idx.Query(ctx, []float32{1, 0}, 1, nil); err == nil {
		t.Fatal("expected dimension mismatch on query")
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indices", "vectors.json")
	ctx := context.Background()

	idx, _ := NewMemoryIndex(2)
	_ = idx.Upsert(ctx, []models.IndexedRecord{
		record("a", "d1", "hr", []float32{1, 0}),
		record("b", "d2", "it", []float32{0, 1}),
	})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	stats, _ := loaded.Stats(ctx)
	if stats.TotalVectors != 2 {
		t.Errorf("TotalVectors after load = %d, want 2", stats.TotalVectors)
	}
	matches, _ := loaded.Query(ctx, []float32{1, 0}, 1, nil)
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Error("loaded index does not answer queries correctly")
	}

	wrongDim, _ := NewMemoryIndex(3)
	if err := wrongDim.Load(path); err == nil {
		t.Fatal("expected dimension mismatch on load")
	}
}

func TestMemoryIndex_LoadMissingFile(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	if err := idx.Load(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
}
