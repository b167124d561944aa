package driving

import (
	"context"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// ChatService answers user queries against the built index.
type ChatService interface {
	// Answer produces an answer for one query and appends the turn
	// to the conversation history. A single query's failure is
	// absorbed by the fallback chain: the returned answer is never
	// empty, and an error is only returned for conditions the user
	// must fix (e.g. no index built yet).
	Answer(ctx context.Context, query string) (domain.Answer, error)

	// Status reports the state of the index and configured services.
	Status(ctx context.Context) (Status, error)
}

// Status describes the running system for the status command and the
// chat status bar.
type Status struct {
	// DocsPath is the configured corpus directory.
	DocsPath string

	// Manifest is the manifest of the loaded index.
	Manifest domain.IndexManifest

	// IndexReady is true when an index is loaded and consistent.
	IndexReady bool

	// EmbeddingModel and GeneratorModel are the configured model
	// names; GeneratorModel is empty when generation is disabled.
	EmbeddingModel string
	GeneratorModel string

	// Turns is the number of recorded conversation turns.
	Turns int

	// Warnings lists non-fatal issues (e.g. config/manifest drift).
	Warnings []string
}
