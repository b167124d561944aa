package services

// In-memory doubles for the driven ports, shared by the service tests.

import (
	"context"
	"sort"
	"strings"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
)

type stubEmbedder struct {
	byText map[string][]float32
	dims   int
	model  string
	err    error
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		byText: make(map[string][]float32),
		dims:   3,
		model:  "stub-embed",
	}
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.byText[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int            { return s.dims }
func (s *stubEmbedder) ModelName() string          { return s.model }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

type fakeIndex struct {
	dims     int
	vectors  [][]float32
	rebuilds int
}

func (f *fakeIndex) Rebuild(_ context.Context, dims int, vectors [][]float32) error {
	f.dims = dims
	f.vectors = vectors
	f.rebuilds++
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(f.vectors) == 0 {
		return nil, domain.ErrNoIndex
	}
	hits := make([]driven.VectorHit, 0, len(f.vectors))
	for i, v := range f.vectors {
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(query[j])
		}
		hits = append(hits, driven.VectorHit{Position: i, Similarity: dot})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Similarity > hits[b].Similarity })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeIndex) Len() int        { return len(f.vectors) }
func (f *fakeIndex) Dimensions() int { return f.dims }
func (f *fakeIndex) Close() error    { return nil }

type fakeChunkLog struct {
	chunks   []domain.Chunk
	written  bool
	rewrites int
}

func (f *fakeChunkLog) Rewrite(_ context.Context, chunks []domain.Chunk) error {
	f.chunks = append([]domain.Chunk(nil), chunks...)
	f.written = true
	f.rewrites++
	return nil
}

func (f *fakeChunkLog) All(context.Context) ([]domain.Chunk, error) {
	if !f.written {
		return nil, domain.ErrNoIndex
	}
	return f.chunks, nil
}

func (f *fakeChunkLog) Count(context.Context) (int, error) {
	if !f.written {
		return 0, domain.ErrNoIndex
	}
	return len(f.chunks), nil
}

type fakeManifests struct {
	manifest *domain.IndexManifest
}

func (f *fakeManifests) Save(_ context.Context, m domain.IndexManifest) error {
	f.manifest = &m
	return nil
}

func (f *fakeManifests) Load(context.Context) (domain.IndexManifest, error) {
	if f.manifest == nil {
		return domain.IndexManifest{}, domain.ErrNoIndex
	}
	return *f.manifest, nil
}

type fakeHistory struct {
	turns     []domain.ConversationTurn
	appendErr error
}

func (f *fakeHistory) Append(_ context.Context, turn domain.ConversationTurn) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]domain.ConversationTurn, error) {
	out := make([]domain.ConversationTurn, 0, limit)
	for i := len(f.turns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.turns[i])
	}
	return out, nil
}

func (f *fakeHistory) Count(context.Context) (int, error) { return len(f.turns), nil }

func (f *fakeHistory) SetFeedback(_ context.Context, id, feedback string) error {
	for i := range f.turns {
		if f.turns[i].ID == id {
			f.turns[i].Feedback = feedback
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeHistory) Close() error { return nil }

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) ModelName() string          { return "stub-llm" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

type stubPrompts struct{}

func (stubPrompts) Load(name string) (string, error) {
	if strings.HasPrefix(name, driven.PromptGroundedAnswer) {
		return "CTX:\n%s\nQ: %s", nil
	}
	return "Q: %s", nil
}

func (stubPrompts) Reload() {}
