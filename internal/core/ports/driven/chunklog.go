package driven

import (
	"context"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// ChunkLog is the append-only metadata log parallel to the vector
// index: record i describes vector i. It is rewritten wholesale on
// each indexing run, in lock-step with the index.
type ChunkLog interface {
	// Rewrite atomically replaces the log with the given chunks.
	Rewrite(ctx context.Context, chunks []domain.Chunk) error

	// All returns every chunk in insertion order.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Count returns the number of records without loading them.
	Count(ctx context.Context) (int, error)
}

// ManifestStore persists the IndexManifest beside the index so a
// rebuild with mismatched configuration can be detected.
type ManifestStore interface {
	// Save writes the manifest.
	Save(ctx context.Context, m domain.IndexManifest) error

	// Load reads the manifest. Returns domain.ErrNoIndex when no
	// manifest exists.
	Load(ctx context.Context) (domain.IndexManifest, error)
}
