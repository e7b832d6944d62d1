package ingest

import (
	"strings"
	"testing"
)

func TestChunkShortTextSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200)

	chunks := c.Chunk("One short paragraph.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "One short paragraph." {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(1000, 200)

	if chunks := c.Chunk(""); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := c.Chunk("\n\n  \n\n"); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestChunkSplitsAtParagraphBoundaries(t *testing.T) {
	c := NewChunker(100, 0)

	para1 := strings.Repeat("alpha ", 12) // ~72 chars
	para2 := strings.Repeat("beta ", 12)  // ~60 chars
	chunks := c.Chunk(strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "alpha") || strings.Contains(chunks[0], "beta") {
		t.Fatalf("paragraph boundary not respected: %q", chunks[0])
	}
}

func TestChunkRespectsMaxSize(t *testing.T) {
	c := NewChunker(120, 20)

	text := strings.Repeat("The widget pipeline processes documents. ", 40)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("long text should produce multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 120+20 {
			t.Fatalf("chunk %d exceeds size bound: %d chars", i, len(chunk))
		}
		if strings.TrimSpace(chunk) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestChunkHardSplitPiecesCarryNoOverlap(t *testing.T) {
	c := NewChunker(100, 30)

	// One 250-char paragraph with no internal breaks forces two hard cuts.
	paragraph := strings.Repeat("abcdefghij", 25)
	chunks := c.Chunk(paragraph)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, want := range []string{paragraph[:100], paragraph[100:200], paragraph[200:]} {
		if chunks[i] != want {
			t.Fatalf("chunk %d = %q, want verbatim slice %q", i, chunks[i], want)
		}
		if len(chunks[i]) > 100 {
			t.Fatalf("hard-split chunk %d exceeds max size: %d chars", i, len(chunks[i]))
		}
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	c := NewChunker(80, 30)

	para1 := "First section about widgets. Shipping happens weekly."
	para2 := "Second section about pricing tiers and discounts available."
	chunks := c.Chunk(para1 + "\n\n" + para2)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The second chunk should start with trailing text of the first.
	if !strings.Contains(chunks[1], "Shipping happens weekly.") {
		t.Fatalf("overlap not carried into next chunk: %q", chunks[1])
	}
}
