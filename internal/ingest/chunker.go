package ingest

import (
	"regexp"
	"strings"
)

// Chunker splits extracted text into overlapping chunks, preferring
// paragraph boundaries and falling back to hard splits for very long
// paragraphs.
type Chunker struct {
	maxChunkSize   int
	overlap        int
	sentenceRegex  *regexp.Regexp
	paragraphRegex *regexp.Regexp
}

func NewChunker(maxChunkSize, overlap int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 || overlap >= maxChunkSize {
		overlap = maxChunkSize / 5
	}
	return &Chunker{
		maxChunkSize:   maxChunkSize,
		overlap:        overlap,
		sentenceRegex:  regexp.MustCompile(`[.!?]+[\s]+`),
		paragraphRegex: regexp.MustCompile(`\n\n+`),
	}
}

// Chunk splits text into chunks of at most maxChunkSize characters. A chunk
// that starts at a paragraph boundary carries overlap text from its
// predecessor so retrieval does not lose context at boundaries. Hard-split
// pieces of an oversized paragraph are emitted verbatim with no overlap
// carry: the cuts fall at arbitrary offsets, and prepending overlap would
// push the piece past maxChunkSize.
func (c *Chunker) Chunk(text string) []string {
	paragraphs := c.paragraphRegex.Split(text, -1)

	var chunks []string
	var current strings.Builder

	emit := func(chunk string) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	flush := func() {
		previous := strings.TrimSpace(current.String())
		emit(previous)
		current.Reset()
		if c.overlap > 0 && previous != "" {
			current.WriteString(c.overlapText(previous))
		}
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		// Hard-split paragraphs that alone exceed the chunk size. No overlap
		// seeding here; see the method comment.
		for len(paragraph) > c.maxChunkSize {
			emit(current.String())
			current.Reset()
			emit(paragraph[:c.maxChunkSize])
			paragraph = strings.TrimSpace(paragraph[c.maxChunkSize:])
		}
		if paragraph == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > c.maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}

	emit(current.String())
	return chunks
}

// overlapText takes the trailing text of the previous chunk, capped at the
// configured overlap size and aligned to a sentence boundary when one exists
// inside the overlap window.
func (c *Chunker) overlapText(previous string) string {
	if len(previous) <= c.overlap {
		return previous
	}

	tail := previous[len(previous)-c.overlap:]
	if loc := c.sentenceRegex.FindStringIndex(tail); loc != nil {
		tail = tail[loc[1]:]
	}
	return strings.TrimSpace(tail)
}
