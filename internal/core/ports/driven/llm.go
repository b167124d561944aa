package driven

import "context"

// LLMService produces answer text from a prompt.
// This is an optional service - when nil, the composer degrades to
// verbatim retrieval and the safe response.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (cloud API)
//   - TGI (Text Generation Inference endpoint, local or remote)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
