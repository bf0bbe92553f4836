// Package chunker splits extracted document text into overlapping,
// sentence-respecting segments suitable for embedding.
package chunker

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the nominal overlap in characters. The actual overlap
	// is the last two sentences of the previous chunk, so boundaries never
	// fall mid-sentence.
	DefaultOverlap = 200
	// MinChunkChars is the floor below which chunks are discarded, to avoid
	// indexing fragments.
	MinChunkChars = 50
)

// Chunker splits text into sentence-respecting chunks with overlap.
type Chunker struct {
	chunkSize     int
	overlap       int
	minChunkChars int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// Non-positive values fall back to the defaults.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{
		chunkSize:     chunkSize,
		overlap:       overlap,
		minChunkChars: MinChunkChars,
	}
}

// ChunkText splits text into chunks. Sentences are delimited by terminal
// punctuation (. ! ?); whitespace-only sentences are discarded. Sentences
// accumulate into a buffer that is emitted once adding the next sentence
// would exceed chunkSize; the new buffer is seeded with the last two
// sentences of the emitted chunk so context carries across boundaries.
// Chunks shorter than the floor are dropped. Pure function of its inputs:
// identical input yields identical output.
func (c *Chunker) ChunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		withPunct := strings.TrimSpace(sentence) + "."
		if len(current)+len(withPunct) > c.chunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = overlapSeed(current) + ". " + withPunct
		} else {
			current += " " + withPunct
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	kept := chunks[:0]
	for _, chunk := range chunks {
		if len(chunk) >= c.minChunkChars {
			kept = append(kept, chunk)
		}
	}
	return kept
}

// Chunk runs ChunkText and wraps the results as models.Chunks with contiguous
// indices starting at zero.
func (c *Chunker) Chunk(docID, text string) []models.Chunk {
	texts := c.ChunkText(text)
	if len(texts) == 0 {
		return nil
	}
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{
			Text:             t,
			Index:            i,
			SourceDocumentID: docID,
			SizeBytes:        len(t),
		}
	}
	return chunks
}

// splitSentences splits text on terminal punctuation and drops empty or
// whitespace-only pieces. Text with no terminal punctuation comes back as a
// single sentence.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// overlapSeed returns the last two sentences of an emitted chunk, rejoined
// with ". ", to seed the next buffer.
func overlapSeed(chunk string) string {
	sentences := splitSentences(chunk)
	if len(sentences) > 2 {
		sentences = sentences[len(sentences)-2:]
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	return strings.Join(sentences, ". ")
}
