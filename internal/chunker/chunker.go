// Package chunker splits document content into fixed-size overlapping
// windows used as retrieval units.
package chunker

import (
	"github.com/google/uuid"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// DefaultChunkSize is the default window width in runes.
const DefaultChunkSize = 800

// DefaultOverlap is the default number of runes shared between
// consecutive chunks.
const DefaultOverlap = 120

// Chunker cuts documents into overlapping windows. Offsets are
// counted in runes so multi-byte text never splits mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the window width in runes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the window to advance.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window width.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap width.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits the document into windows. A document shorter than the
// window width yields exactly one chunk equal to the whole content;
// every later chunk repeats the trailing overlap runes of its
// predecessor. Empty content yields no chunks.
func (c *Chunker) Chunk(doc domain.Document) []domain.Chunk {
	if doc.Content == "" {
		return nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)
	position := 0

	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			Source:      doc.Path,
			Content:     string(runes[start:end]),
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
			Tags:        doc.Tags,
		})
		position++

		if end == total {
			break
		}
	}

	return chunks
}
