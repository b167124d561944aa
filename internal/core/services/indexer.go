// Package services contains the application core: the index build
// pipeline and the query answering pipeline. Services depend only on
// the driven ports; adapters are injected at startup.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/respondo-labs/respondo-cli/internal/chunker"
	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
	"github.com/respondo-labs/respondo-cli/internal/loader"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// DefaultEmbedBatchSize is how many chunk texts are embedded per
// request batch.
const DefaultEmbedBatchSize = 32

// IndexerConfig holds configuration for the Indexer.
type IndexerConfig struct {
	// DocsPath is the corpus directory to load.
	DocsPath string

	// BatchSize is the embedding batch size (default 32).
	BatchSize int

	// EmbedRate limits embedding batches per second against local or
	// metered backends. Zero means unlimited.
	EmbedRate rate.Limit
}

// Indexer rebuilds the retrieval index from the corpus: load, chunk,
// embed, then atomically replace the vector index, chunk log and
// manifest.
type Indexer struct {
	loader    *loader.Loader
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	chunkLog  driven.ChunkLog
	manifests driven.ManifestStore

	docsPath  string
	batchSize int
	limiter   *rate.Limiter
}

// NewIndexer creates an Indexer.
func NewIndexer(
	cfg IndexerConfig,
	ld *loader.Loader,
	ck *chunker.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	chunkLog driven.ChunkLog,
	manifests driven.ManifestStore,
) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}

	var limiter *rate.Limiter
	if cfg.EmbedRate > 0 {
		limiter = rate.NewLimiter(cfg.EmbedRate, 1)
	}

	return &Indexer{
		loader:    ld,
		chunker:   ck,
		embedder:  embedder,
		index:     index,
		chunkLog:  chunkLog,
		manifests: manifests,
		docsPath:  cfg.DocsPath,
		batchSize: cfg.BatchSize,
		limiter:   limiter,
	}
}

// Build implements driving.IndexService.
//
// Any embedding failure aborts the build before anything is written:
// a partial index would break the vector/metadata lock-step. The three
// on-disk artefacts are then replaced index first, log second,
// manifest last, each atomically.
func (s *Indexer) Build(ctx context.Context) (domain.IndexManifest, error) {
	logger.Section("index")
	start := time.Now()

	docs, err := s.loader.Load(s.docsPath)
	if err != nil {
		return domain.IndexManifest{}, err
	}
	logger.Info("loaded %d documents from %s", len(docs), s.docsPath)

	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.chunker.Chunk(doc)...)
	}
	if len(chunks) == 0 {
		return domain.IndexManifest{}, domain.ErrEmptyCorpus
	}
	logger.Info("chunked into %d chunks (size=%d overlap=%d)",
		len(chunks), s.chunker.ChunkSize(), s.chunker.Overlap())

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return domain.IndexManifest{}, err
	}

	dims := len(vectors[0])
	if err := s.index.Rebuild(ctx, dims, vectors); err != nil {
		return domain.IndexManifest{}, fmt.Errorf("rebuild vector index: %w", err)
	}
	if err := s.chunkLog.Rewrite(ctx, chunks); err != nil {
		return domain.IndexManifest{}, fmt.Errorf("rewrite chunk log: %w", err)
	}

	manifest := domain.IndexManifest{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     dims,
		ChunkSize:      s.chunker.ChunkSize(),
		Overlap:        s.chunker.Overlap(),
		DocsPath:       s.docsPath,
		ChunkCount:     len(chunks),
		BuiltAt:        time.Now().UTC(),
	}
	if err := s.manifests.Save(ctx, manifest); err != nil {
		return domain.IndexManifest{}, fmt.Errorf("save manifest: %w", err)
	}

	logger.Info("index built: %d chunks, %d dims, %s", len(chunks), dims, time.Since(start).Round(time.Millisecond))
	return manifest, nil
}

// embedChunks embeds every chunk in rate-limited batches, failing fast
// on the first error.
func (s *Indexer) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(chunks))

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		texts := make([]string, 0, hi-lo)
		for _, c := range chunks[lo:hi] {
			texts = append(texts, c.Content)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embed chunks %d-%d: %v",
				domain.ErrEmbeddingUnavailable, lo, hi-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts",
				lo, hi-1, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		logger.Debug("embedded %d/%d chunks", hi, len(chunks))
	}

	return vectors, nil
}
