package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCorpus indicates the docs directory contains no
	// loadable documents. Indexing refuses to write an empty index.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNoIndex indicates no index has been built yet, or the
	// index files are missing from disk.
	ErrNoIndex = errors.New("no index")

	// ErrIndexMismatch indicates the on-disk index was built with a
	// different configuration than the current one.
	ErrIndexMismatch = errors.New("index configuration mismatch")

	// ErrIndexCorrupt indicates the vector index and the chunk
	// metadata log disagree about their contents.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrLLMUnavailable indicates no generation service is
	// configured or reachable. The composer degrades to verbatim
	// retrieval and the safe response.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or reachable. Neither indexing nor retrieval can
	// run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrAnswerRejected indicates a generated answer failed length
	// validation. Handled internally by the fallback chain.
	ErrAnswerRejected = errors.New("answer rejected by validation")
)
