// Package extract normalizes uploaded document content to plain text before
// chunking. Binary formats are handled by an upstream extraction service;
// this package only ever sees text and markdown.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParsedDocument is extracted plain text plus the metadata the ingest
// pipeline records about it.
type ParsedDocument struct {
	Text     string
	Filename string
	FileType string
	Size     int
}

// Extractor turns raw uploaded content into plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract normalizes content for the given filename. Markdown is stripped
// to its text so headings and formatting markers do not pollute embeddings;
// everything else passes through as UTF-8 validated plain text.
func (e *Extractor) Extract(filename, content string) (*ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var text string
	var err error
	switch ext {
	case ".md", ".markdown":
		text, err = stripMarkdown(content)
	case ".txt", ".rst", "":
		text, err = extractPlain(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (extract binary formats before upload)", ext)
	}
	if err != nil {
		return nil, err
	}
	return &ParsedDocument{
		Text:     text,
		Filename: filename,
		FileType: strings.TrimPrefix(ext, "."),
		Size:     len(content),
	}, nil
}
