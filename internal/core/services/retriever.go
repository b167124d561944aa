package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// Retriever embeds a query and finds the most similar chunks.
// Chunk metadata is loaded from the log once and cached; Refresh
// drops the cache after a rebuild.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	chunkLog driven.ChunkLog

	mu     sync.Mutex
	chunks []domain.Chunk
	loaded bool
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, chunkLog driven.ChunkLog) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		chunkLog: chunkLog,
	}
}

// Retrieve returns the k most similar chunks to the query, best first.
// Returns domain.ErrNoIndex when no index has been built.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	chunks, err := r.chunkRecords(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(chunks) {
			return nil, fmt.Errorf("%w: vector %d has no metadata record (%d records)",
				domain.ErrIndexCorrupt, hit.Position, len(chunks))
		}
		results = append(results, domain.SearchHit{
			Chunk: chunks[hit.Position],
			Score: hit.Similarity,
		})
	}

	if len(results) > 0 {
		logger.Debug("retrieved %d chunks, best score %.3f (%s)",
			len(results), results[0].Score, results[0].Chunk.Source)
	}
	return results, nil
}

// Refresh drops the cached chunk metadata so the next Retrieve reads
// the rewritten log.
func (r *Retriever) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.loaded = false
}

func (r *Retriever) chunkRecords(ctx context.Context) ([]domain.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		chunks, err := r.chunkLog.All(ctx)
		if err != nil {
			return nil, err
		}
		r.chunks = chunks
		r.loaded = true
	}
	return r.chunks, nil
}
