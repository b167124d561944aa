package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTurn(id string, ts time.Time) domain.ConversationTurn {
	return domain.ConversationTurn{
		ID:        id,
		Timestamp: ts,
		Query:     "Qual o horário de atendimento?",
		Answer:    "O horário de atendimento é das 9h às 18h.",
		Tier:      domain.TierGrounded,
		Retrieved: []domain.ChunkRef{
			{Source: "/corpus/horarios.txt", Position: 0, Score: 0.83},
		},
	}
}

func TestHistoryStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, sampleTurn("t1", base)))
	require.NoError(t, store.Append(ctx, sampleTurn("t2", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, sampleTurn("t3", base.Add(2*time.Minute))))

	turns, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "t3", turns[0].ID)
	assert.Equal(t, "t2", turns[1].ID)

	require.Len(t, turns[0].Retrieved, 1)
	assert.Equal(t, "/corpus/horarios.txt", turns[0].Retrieved[0].Source)
	assert.InDelta(t, 0.83, turns[0].Retrieved[0].Score, 1e-9)
	assert.Equal(t, domain.TierGrounded, turns[0].Tier)
}

func TestHistoryStore_Count(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Append(ctx, sampleTurn("t1", time.Now().UTC())))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHistoryStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := NewHistoryStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, sampleTurn("t1", time.Now().UTC())))
	require.NoError(t, first.Close())

	second, err := NewHistoryStore(path)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHistoryStore_SetFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleTurn("t1", time.Now().UTC())))
	require.NoError(t, store.SetFeedback(ctx, "t1", "down"))

	turns, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "down", turns[0].Feedback)

	t.Run("unknown id", func(t *testing.T) {
		err := store.SetFeedback(ctx, "missing", "up")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid value", func(t *testing.T) {
		err := store.SetFeedback(ctx, "t1", "maybe")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}
