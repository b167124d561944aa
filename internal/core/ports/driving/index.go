package driving

import (
	"context"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// IndexService rebuilds the retrieval index from the document corpus.
type IndexService interface {
	// Build loads the corpus, chunks it, embeds every chunk and
	// atomically replaces the on-disk index, metadata log and
	// manifest. Returns domain.ErrEmptyCorpus when nothing loadable
	// is found; in that case nothing is written.
	Build(ctx context.Context) (domain.IndexManifest, error)
}
