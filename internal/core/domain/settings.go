package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies an AI service backend for embeddings or
// generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderTGI is a Text Generation Inference endpoint
	// (local or remote), generation only.
	AIProviderTGI AIProvider = "tgi"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderTGI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// IndexManifest records the configuration an index was built with.
// It is persisted beside the vector index and checked when the index
// is loaded, so a retrieval run cannot silently use an index built
// with a different embedding model or chunking geometry.
type IndexManifest struct {
	// EmbeddingModel is the model used to embed every chunk.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the embedding vector size.
	Dimensions int `json:"dimensions"`

	// ChunkSize and Overlap are the chunking geometry in runes.
	ChunkSize int `json:"chunk_size"`
	Overlap   int `json:"overlap"`

	// DocsPath is the corpus directory the index was built from.
	DocsPath string `json:"docs_path"`

	// ChunkCount is the number of vectors in the index. It must
	// equal the number of records in the chunk metadata log.
	ChunkCount int `json:"chunk_count"`

	// BuiltAt is when the build completed.
	BuiltAt time.Time `json:"built_at"`
}

// Validate checks the manifest against the current configuration.
// A mismatched embedding model corrupts retrieval silently, so it is
// rejected here rather than detected at query time.
func (m IndexManifest) Validate(embeddingModel string, chunkSize, overlap int) error {
	if m.EmbeddingModel != embeddingModel {
		return fmt.Errorf("%w: index built with embedding model %q, configured model is %q (rebuild with 'respondo index')",
			ErrIndexMismatch, m.EmbeddingModel, embeddingModel)
	}
	if m.ChunkSize != chunkSize || m.Overlap != overlap {
		return fmt.Errorf("%w: index built with chunk_size=%d overlap=%d, configured chunk_size=%d overlap=%d (rebuild with 'respondo index')",
			ErrIndexMismatch, m.ChunkSize, m.Overlap, chunkSize, overlap)
	}
	return nil
}

// CheckCount verifies the lock-step invariant between the vector
// index and the chunk metadata log.
func (m IndexManifest) CheckCount(vectors, records int) error {
	if vectors != m.ChunkCount || records != m.ChunkCount {
		return fmt.Errorf("%w: manifest records %d chunks, index has %d vectors and %d metadata records",
			ErrIndexCorrupt, m.ChunkCount, vectors, records)
	}
	return nil
}
