package jsonl

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

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{
			ID:          "c1",
			DocumentID:  "d1",
			Source:      "/corpus/horarios.txt",
			Content:     "P: Qual o horário? R: 9h às 18h.",
			Position:    0,
			StartOffset: 0,
			EndOffset:   32,
			Tags:        []string{"atendimento"},
		},
		{
			ID:          "c2",
			DocumentID:  "d1",
			Source:      "/corpus/horarios.txt",
			Content:     "R: 9h às 18h. Fechado aos feriados.",
			Position:    1,
			StartOffset: 20,
			EndOffset:   55,
		},
	}
}

func TestChunkLog_RoundTrip(t *testing.T) {
	log := NewChunkLog(filepath.Join(t.TempDir(), "meta.jsonl"))
	ctx := context.Background()

	require.NoError(t, log.Rewrite(ctx, sampleChunks()))

	got, err := log.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sampleChunks(), got)

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChunkLog_RewriteReplaces(t *testing.T) {
	log := NewChunkLog(filepath.Join(t.TempDir(), "meta.jsonl"))
	ctx := context.Background()

	require.NoError(t, log.Rewrite(ctx, sampleChunks()))
	require.NoError(t, log.Rewrite(ctx, sampleChunks()[:1]))

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChunkLog_MissingFile(t *testing.T) {
	log := NewChunkLog(filepath.Join(t.TempDir(), "meta.jsonl"))

	_, err := log.All(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNoIndex))

	_, err = log.Count(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNoIndex))
}

func TestManifestStore_RoundTrip(t *testing.T) {
	store := NewManifestStore(filepath.Join(t.TempDir(), "settings.json"))
	ctx := context.Background()

	m := domain.IndexManifest{
		EmbeddingModel: "nomic-embed-text",
		Dimensions:     768,
		ChunkSize:      800,
		Overlap:        120,
		DocsPath:       "/corpus",
		ChunkCount:     42,
		BuiltAt:        time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestManifestStore_Missing(t *testing.T) {
	store := NewManifestStore(filepath.Join(t.TempDir(), "settings.json"))
	_, err := store.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNoIndex))
}

func turn(id, query string) domain.ConversationTurn {
	return domain.ConversationTurn{
		ID:        id,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Query:     query,
		Answer:    "O horário de atendimento é das 9h às 18h.",
		Tier:      domain.TierGrounded,
	}
}

func TestHistoryStore_AppendOnlyAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.jsonl")
	ctx := context.Background()

	first := NewHistoryStore(path)
	require.NoError(t, first.Append(ctx, turn("t1", "Qual o horário?")))
	require.NoError(t, first.Append(ctx, turn("t2", "Onde fica a sede?")))
	require.NoError(t, first.Close())

	// A second run against the same file keeps the previous turns.
	second := NewHistoryStore(path)
	require.NoError(t, second.Append(ctx, turn("t3", "Qual o horário?")))

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recent, err := second.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t3", recent[0].ID)
	assert.Equal(t, "t2", recent[1].ID)
}

func TestHistoryStore_EmptyHistory(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "chat_history.jsonl"))
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestHistoryStore_SetFeedback(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "chat_history.jsonl"))
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, turn("t1", "Qual o horário?")))
	require.NoError(t, store.SetFeedback(ctx, "t1", "up"))

	recent, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "up", recent[0].Feedback)

	t.Run("unknown id", func(t *testing.T) {
		err := store.SetFeedback(ctx, "missing", "down")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("invalid value", func(t *testing.T) {
		err := store.SetFeedback(ctx, "t1", "meh")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}
