package domain

import "time"

// Document represents a single FAQ text source loaded from the corpus.
// It is the canonical representation after loading; documents are
// immutable once loaded.
type Document struct {
	// ID is the unique identifier, derived from the file path.
	ID string

	// Path is the file the document was loaded from.
	Path string

	// Title is the human-readable title (file name without extension).
	Title string

	// Content is the full text content before chunking.
	Content string

	// Tags are optional labels carried by structured records.
	Tags []string

	// LoadedAt is when the document was read from disk.
	LoadedAt time.Time
}

// Chunk is a bounded slice of a document used as a retrieval unit.
// Chunks are created during indexing and never mutated afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the source Document.
	DocumentID string

	// Source is the file path of the source document.
	Source string

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset and EndOffset are rune offsets into the document
	// content. Consecutive chunks of a document overlap by the
	// configured overlap width.
	StartOffset int
	EndOffset   int

	// Tags are inherited from the source document.
	Tags []string
}

// SearchHit is a retrieved chunk paired with its similarity score.
type SearchHit struct {
	// Chunk is the matched retrieval unit.
	Chunk Chunk

	// Score is the cosine similarity against the query, in [-1, 1].
	Score float64
}

// ChunkRef is a compact reference to a retrieved chunk, recorded in
// the conversation history instead of the full chunk text.
type ChunkRef struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// Ref returns a compact history reference for the hit.
func (h SearchHit) Ref() ChunkRef {
	return ChunkRef{
		Source:   h.Chunk.Source,
		Position: h.Chunk.Position,
		Score:    h.Score,
	}
}
