// Package storage provides the SQLite document registry. The registry holds
// one row per ingested document; chunk text and vectors live in the vector
// index, so deleting a registry row must be paired with a vector delete.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// Registry is the document registry backed by SQLite.
type Registry struct {
	db *sql.DB
}

// NewRegistry opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewRegistry(dbPath string) (*Registry, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Registry{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'general',
		size INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		upload_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
	CREATE INDEX IF NOT EXISTS idx_documents_upload_date ON documents(upload_date);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert writes the registry row for an ingested document. Re-uploading an
// existing id replaces the row, matching the overwrite semantics of the
// vector index.
func (r *Registry) Upsert(ctx context.Context, doc *models.Document) error {
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, category, size, chunk_count, upload_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			category = excluded.category,
			size = excluded.size,
			chunk_count = excluded.chunk_count,
			upload_date = excluded.upload_date`,
		doc.ID, doc.Filename, doc.Category, doc.Size, doc.ChunkCount, doc.UploadDate,
	)
	return err
}

// Get returns a document by ID.
func (r *Registry) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.db.QueryRowContext(ctx,
		`SELECT id, filename, category, size, chunk_count, upload_date
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.Category, &doc.Size, &doc.ChunkCount, &doc.UploadDate)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents newest first, optionally restricted to a category.
// The reserved category value "all" (or empty) means unrestricted.
func (r *Registry) List(ctx context.Context, category string) ([]*models.Document, error) {
	query := `SELECT id, filename, category, size, chunk_count, upload_date
	 FROM documents ORDER BY upload_date DESC`
	args := []any{}
	if category != "" && category != "all" {
		query = `SELECT id, filename, category, size, chunk_count, upload_date
		 FROM documents WHERE category = ? ORDER BY upload_date DESC`
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Category, &doc.Size, &doc.ChunkCount, &doc.UploadDate); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Delete removes a document row by ID. Returns whether a row was removed.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of registered documents.
func (r *Registry) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}
