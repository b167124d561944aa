package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// Ensure Chat implements the interface.
var _ driving.ChatService = (*Chat)(nil)

// ChatConfig holds configuration for the Chat service.
type ChatConfig struct {
	// DocsPath is the configured corpus directory, reported in Status.
	DocsPath string

	// TopK is how many chunks to retrieve per query.
	TopK int

	// ChunkSize and Overlap are the configured chunking geometry,
	// checked against the index manifest.
	ChunkSize int
	Overlap   int
}

// Chat answers queries: retrieve, compose, record the turn.
type Chat struct {
	retriever *Retriever
	composer  *Composer
	history   driven.HistoryStore
	index     driven.VectorIndex
	chunkLog  driven.ChunkLog
	manifests driven.ManifestStore
	embedder  driven.EmbeddingService
	llm       driven.LLMService // nil when generation is disabled
	cfg       ChatConfig
}

// NewChat creates a Chat service.
func NewChat(
	cfg ChatConfig,
	retriever *Retriever,
	composer *Composer,
	history driven.HistoryStore,
	index driven.VectorIndex,
	chunkLog driven.ChunkLog,
	manifests driven.ManifestStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) *Chat {
	return &Chat{
		retriever: retriever,
		composer:  composer,
		history:   history,
		index:     index,
		chunkLog:  chunkLog,
		manifests: manifests,
		embedder:  embedder,
		llm:       llm,
		cfg:       cfg,
	}
}

// EnsureReady verifies an index exists and matches the current
// configuration. Called once before a chat session or a one-shot
// question so a stale or mismatched index is rejected up front.
func (s *Chat) EnsureReady(ctx context.Context) error {
	manifest, err := s.manifests.Load(ctx)
	if err != nil {
		return err
	}
	if err := manifest.Validate(s.embedder.ModelName(), s.cfg.ChunkSize, s.cfg.Overlap); err != nil {
		return err
	}

	records, err := s.chunkLog.Count(ctx)
	if err != nil {
		return fmt.Errorf("count chunk records: %w", err)
	}
	return manifest.CheckCount(s.index.Len(), records)
}

// Answer implements driving.ChatService.
func (s *Chat) Answer(ctx context.Context, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	hits, err := s.retriever.Retrieve(ctx, query, s.cfg.TopK)
	if err != nil {
		// A missing or corrupt index needs user action. A transient
		// retrieval failure is absorbed: the composer falls through to
		// the ungrounded and safe tiers.
		if errors.Is(err, domain.ErrNoIndex) || errors.Is(err, domain.ErrIndexCorrupt) {
			return domain.Answer{}, err
		}
		logger.Warn("retrieval failed, answering without context: %v", err)
		hits = nil
	}

	answer := s.composer.Compose(ctx, query, hits)

	turn := domain.ConversationTurn{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Query:     query,
		Answer:    answer.Text,
		Tier:      answer.Tier,
	}
	for _, hit := range answer.Hits {
		turn.Retrieved = append(turn.Retrieved, hit.Ref())
	}

	// History is best-effort: a full disk must not eat the answer.
	if err := s.history.Append(ctx, turn); err != nil {
		logger.Warn("record history turn: %v", err)
	}

	return answer, nil
}

// Status implements driving.ChatService.
func (s *Chat) Status(ctx context.Context) (driving.Status, error) {
	st := driving.Status{
		DocsPath:       s.cfg.DocsPath,
		EmbeddingModel: s.embedder.ModelName(),
	}
	if s.llm != nil {
		st.GeneratorModel = s.llm.ModelName()
	}

	manifest, err := s.manifests.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrNoIndex):
		st.Warnings = append(st.Warnings, "no index built yet (run 'respondo index')")
	case err != nil:
		return driving.Status{}, err
	default:
		st.Manifest = manifest
		st.IndexReady = true

		if err := manifest.Validate(s.embedder.ModelName(), s.cfg.ChunkSize, s.cfg.Overlap); err != nil {
			st.Warnings = append(st.Warnings, err.Error())
			st.IndexReady = false
		}

		records, err := s.chunkLog.Count(ctx)
		if err != nil {
			st.Warnings = append(st.Warnings, fmt.Sprintf("count chunk records: %v", err))
			st.IndexReady = false
		} else if err := manifest.CheckCount(s.index.Len(), records); err != nil {
			st.Warnings = append(st.Warnings, err.Error())
			st.IndexReady = false
		}
	}

	turns, err := s.history.Count(ctx)
	if err != nil {
		st.Warnings = append(st.Warnings, fmt.Sprintf("count history turns: %v", err))
	} else {
		st.Turns = turns
	}

	return st, nil
}
