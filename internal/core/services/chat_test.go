package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

type chatFixture struct {
	chat      *Chat
	history   *fakeHistory
	manifests *fakeManifests
	index     *fakeIndex
	log       *fakeChunkLog
	embedder  *stubEmbedder
	llm       *stubLLM
}

func newChatFixture(t *testing.T, llm driven.LLMService) *chatFixture {
	t.Helper()

	emb := newStubEmbedder()
	emb.byText["Qual o horário de atendimento?"] = []float32{1, 0, 0}

	index := &fakeIndex{}
	log := &fakeChunkLog{}
	ctx := context.Background()

	require.NoError(t, index.Rebuild(ctx, 3, [][]float32{{1, 0, 0}}))
	require.NoError(t, log.Rewrite(ctx, []domain.Chunk{{
		ID:      "c0",
		Source:  "horarios.txt",
		Content: "P: Qual o horário de atendimento?\nR: Das 9h às 18h, de segunda a sexta.",
	}}))

	manifests := &fakeManifests{}
	require.NoError(t, manifests.Save(ctx, domain.IndexManifest{
		EmbeddingModel: emb.ModelName(),
		Dimensions:     3,
		ChunkSize:      800,
		Overlap:        120,
		ChunkCount:     1,
		BuiltAt:        time.Now().UTC(),
	}))

	history := &fakeHistory{}
	composer := NewComposer(llm, stubPrompts{}, testComposerConfig())
	retriever := NewRetriever(emb, index, log)

	cfg := ChatConfig{DocsPath: "/srv/faq", TopK: 5, ChunkSize: 800, Overlap: 120}
	chat := NewChat(cfg, retriever, composer, history, index, log, manifests, emb, llm)

	fx := &chatFixture{chat: chat, history: history, manifests: manifests, index: index, log: log, embedder: emb}
	if s, ok := llm.(*stubLLM); ok {
		fx.llm = s
	}
	return fx
}

func TestAnswer_RejectsEmptyQuery(t *testing.T) {
	fx := newChatFixture(t, nil)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := fx.chat.Answer(context.Background(), query)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "query %q", query)
	}
	assert.Empty(t, fx.history.turns)
}

func TestAnswer_GroundedAndRecorded(t *testing.T) {
	llm := &stubLLM{response: "O atendimento é das 9h às 18h, de segunda a sexta."}
	fx := newChatFixture(t, llm)

	answer, err := fx.chat.Answer(context.Background(), "Qual o horário de atendimento?")
	require.NoError(t, err)

	assert.Equal(t, domain.TierGrounded, answer.Tier)

	require.Len(t, fx.history.turns, 1)
	turn := fx.history.turns[0]
	assert.NotEmpty(t, turn.ID)
	assert.Equal(t, "Qual o horário de atendimento?", turn.Query)
	assert.Equal(t, answer.Text, turn.Answer)
	assert.Equal(t, domain.TierGrounded, turn.Tier)
	require.NotEmpty(t, turn.Retrieved)
	assert.Equal(t, "horarios.txt", turn.Retrieved[0].Source)
}

func TestAnswer_NoIndexPropagates(t *testing.T) {
	emb := newStubEmbedder()
	composer := NewComposer(nil, stubPrompts{}, testComposerConfig())
	retriever := NewRetriever(emb, &fakeIndex{}, &fakeChunkLog{})
	chat := NewChat(ChatConfig{TopK: 5}, retriever, composer,
		&fakeHistory{}, &fakeIndex{}, &fakeChunkLog{}, &fakeManifests{}, emb, nil)

	_, err := chat.Answer(context.Background(), "Qual o horário?")
	assert.ErrorIs(t, err, domain.ErrNoIndex)
}

func TestAnswer_TransientRetrievalFailureIsAbsorbed(t *testing.T) {
	fx := newChatFixture(t, nil)

	// Break embedding after the fixture is built; the query cannot be
	// embedded so retrieval fails, and the safe tier answers.
	fx.embedder.err = assert.AnError

	answer, err := fx.chat.Answer(context.Background(), "Qual o horário de atendimento?")
	require.NoError(t, err)
	assert.Equal(t, domain.TierSafe, answer.Tier)
	assert.NotEmpty(t, answer.Text)
	assert.Len(t, fx.history.turns, 1)
}

func TestAnswer_HistoryFailureDoesNotEatAnswer(t *testing.T) {
	fx := newChatFixture(t, nil)
	fx.history.appendErr = assert.AnError

	answer, err := fx.chat.Answer(context.Background(), "Qual o horário de atendimento?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
}

func TestEnsureReady(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		assert.NoError(t, fx.chat.EnsureReady(context.Background()))
	})

	t.Run("no index", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		fx.manifests.manifest = nil
		assert.ErrorIs(t, fx.chat.EnsureReady(context.Background()), domain.ErrNoIndex)
	})

	t.Run("embedding model drift", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		fx.manifests.manifest.EmbeddingModel = "other-model"
		assert.ErrorIs(t, fx.chat.EnsureReady(context.Background()), domain.ErrIndexMismatch)
	})

	t.Run("count drift", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		fx.manifests.manifest.ChunkCount = 7
		assert.ErrorIs(t, fx.chat.EnsureReady(context.Background()), domain.ErrIndexCorrupt)
	})
}

func TestStatus(t *testing.T) {
	t.Run("ready index", func(t *testing.T) {
		llm := &stubLLM{}
		fx := newChatFixture(t, llm)

		st, err := fx.chat.Status(context.Background())
		require.NoError(t, err)

		assert.True(t, st.IndexReady)
		assert.Empty(t, st.Warnings)
		assert.Equal(t, "/srv/faq", st.DocsPath)
		assert.Equal(t, "stub-embed", st.EmbeddingModel)
		assert.Equal(t, "stub-llm", st.GeneratorModel)
		assert.Equal(t, 1, st.Manifest.ChunkCount)
	})

	t.Run("no index yet", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		fx.manifests.manifest = nil

		st, err := fx.chat.Status(context.Background())
		require.NoError(t, err)

		assert.False(t, st.IndexReady)
		require.Len(t, st.Warnings, 1)
		assert.Contains(t, st.Warnings[0], "respondo index")
	})

	t.Run("config drift demotes readiness", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		fx.manifests.manifest.ChunkSize = 500

		st, err := fx.chat.Status(context.Background())
		require.NoError(t, err)

		assert.False(t, st.IndexReady)
		assert.NotEmpty(t, st.Warnings)
	})

	t.Run("counts turns", func(t *testing.T) {
		fx := newChatFixture(t, nil)
		_, err := fx.chat.Answer(context.Background(), "Qual o horário de atendimento?")
		require.NoError(t, err)

		st, err := fx.chat.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, st.Turns)
	})
}
