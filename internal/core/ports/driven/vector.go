package driven

import "context"

// VectorIndex provides similarity search over chunk embeddings.
// The index is rebuilt wholesale on every indexing run; there is no
// incremental update. Vector i corresponds to record i of the ChunkLog
// - that ordering is the retrieval contract.
type VectorIndex interface {
	// Rebuild replaces the entire index contents and persists them.
	// The replace is atomic: a failed rebuild leaves the previous
	// index untouched.
	Rebuild(ctx context.Context, dimensions int, vectors [][]float32) error

	// Search finds the k nearest neighbours to the query vector,
	// best first. Equal scores keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors in the index.
	Len() int

	// Dimensions returns the vector size the index was built with,
	// zero when the index is empty.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the insertion position of the matched vector,
	// which is also its record position in the ChunkLog.
	Position int

	// Similarity is the cosine similarity score.
	Similarity float64
}
