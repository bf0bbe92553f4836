package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// sentence returns a sentence of roughly n characters built from numbered words.
func sentence(tag string, n int) string {
	s := tag
	for i := 0; len(s) < n; i++ {
		s += fmt.Sprintf(" word%d", i)
	}
	return s
}

func TestChunker_SplitsLongText(t *testing.T) {
	c := NewChunker(200, 50)
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString(sentence(fmt.Sprintf("sentence%d", i), 80))
		b.WriteString(". ")
	}
	chunks := c.ChunkText(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) < MinChunkChars {
			t.Errorf("chunk %d shorter than floor: %d chars", i, len(ch))
		}
	}
}

func TestChunker_ChunkSizeBound(t *testing.T) {
	const chunkSize = 200
	c := NewChunker(chunkSize, 50)
	var b strings.Builder
	maxSentence := 0
	for i := 0; i < 12; i++ {
		s := sentence(fmt.Sprintf("bound%d", i), 80)
		if len(s) > maxSentence {
			maxSentence = len(s)
		}
		b.WriteString(s)
		b.WriteString(". ")
	}
	chunks := c.ChunkText(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// A chunk can exceed the target only when the two-sentence overlap seed
	// plus the next sentence already does, so the hard bound is the target
	// plus the seed and one more sentence.
	bound := chunkSize + 3*(maxSentence+2)
	for i, ch := range chunks {
		if len(ch) > bound {
			t.Errorf("chunk %d length %d exceeds bound %d", i, len(ch), bound)
		}
	}
}

func TestChunker_CoversAllSentences(t *testing.T) {
	c := NewChunker(200, 50)
	var tags []string
	var b strings.Builder
	for i := 0; i < 8; i++ {
		tag := fmt.Sprintf("marker%d", i)
		tags = append(tags, tag)
		b.WriteString(sentence(tag, 90))
		b.WriteString(". ")
	}
	joined := strings.Join(c.ChunkText(b.String()), " ")
	for _, tag := range tags {
		if !strings.Contains(joined, tag) {
			t.Errorf("sentence %q missing from chunk output", tag)
		}
	}
}

func TestChunker_OverlapCarriesLastSentences(t *testing.T) {
	c := NewChunker(200, 50)
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteString(sentence(fmt.Sprintf("part%d", i), 90))
		b.WriteString(". ")
	}
	chunks := c.ChunkText(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := splitSentences(chunks[i-1])
		last := strings.TrimSpace(prev[len(prev)-1])
		if !strings.Contains(chunks[i], last) {
			t.Errorf("chunk %d does not carry over last sentence of chunk %d", i, i-1)
		}
	}
}

func TestChunker_Idempotent(t *testing.T) {
	c := NewChunker(150, 30)
	text := sentence("alpha", 120) + ". " + sentence("beta", 120) + ". " + sentence("gamma", 120) + "."
	first := c.ChunkText(text)
	second := c.ChunkText(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunker_NoPunctuationSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200)
	text := strings.Repeat("plain words without terminal punctuation ", 3)
	chunks := c.ChunkText(text)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
}

func TestChunker_DropsShortFragments(t *testing.T) {
	c := NewChunker(5, 2)
	chunks := c.ChunkText("A. B. C. D.")
	for _, ch := range chunks {
		if len(ch) < MinChunkChars {
			t.Errorf("fragment below floor survived: %q", ch)
		}
	}
}

func TestChunker_EmptyInput(t *testing.T) {
	c := NewChunker(0, 0)
	if chunks := c.ChunkText("   \n\t  "); chunks != nil {
		t.Errorf("whitespace input should return nil, got %v", chunks)
	}
}

func TestChunker_ChunkIndices(t *testing.T) {
	c := NewChunker(200, 50)
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteString(sentence(fmt.Sprintf("item%d", i), 90))
		b.WriteString(". ")
	}
	chunks := c.Chunk("doc1", b.String())
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d Index=%d", i, ch.Index)
		}
		if ch.SourceDocumentID != "doc1" {
			t.Errorf("chunk %d SourceDocumentID=%s", i, ch.SourceDocumentID)
		}
		if ch.SizeBytes != len(ch.Text) {
			t.Errorf("chunk %d SizeBytes=%d, want %d", i, ch.SizeBytes, len(ch.Text))
		}
	}
}
