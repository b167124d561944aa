package driven

import (
	"context"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// HistoryStore persists conversation turns. Turns are append-only;
// only the feedback flag of an existing turn may be set afterwards.
type HistoryStore interface {
	// Append records a completed turn.
	Append(ctx context.Context, turn domain.ConversationTurn) error

	// Recent returns up to limit turns, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ConversationTurn, error)

	// Count returns the total number of recorded turns.
	Count(ctx context.Context) (int, error)

	// SetFeedback marks a turn with "up" or "down".
	// Returns domain.ErrNotFound for an unknown turn id.
	SetFeedback(ctx context.Context, id, feedback string) error

	// Close releases resources.
	Close() error
}
