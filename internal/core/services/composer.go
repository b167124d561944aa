package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// DefaultTemperature keeps FAQ answers close to the source material.
const DefaultTemperature = 0.2

// ComposerConfig holds the answer policy.
type ComposerConfig struct {
	// Threshold is the minimum best-hit similarity for context-grounded
	// generation and for the verbatim fallback.
	Threshold float64

	// ContextChunks is how many retrieved chunks feed the grounded
	// prompt.
	ContextChunks int

	// MaxTokens caps generation length.
	MaxTokens int

	// Band is the accepted answer length band; generated text outside
	// it is rejected and the next tier is tried.
	Band domain.AnswerBand

	// Language selects the prompt templates ("pt" or "en").
	Language string

	// SafeResponse is the final fallback text.
	SafeResponse string
}

// Composer turns retrieval results into an answer via a fixed fallback
// chain: grounded generation, ungrounded generation, the best chunk
// verbatim, then the safe response. Compose never fails: every tier's
// error drops through to the next, and the safe tier always succeeds.
type Composer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     ComposerConfig
}

// NewComposer creates a Composer. llm may be nil, which disables both
// generation tiers.
func NewComposer(llm driven.LLMService, prompts driven.PromptStore, cfg ComposerConfig) *Composer {
	if cfg.Band.Min <= 0 || cfg.Band.Max <= 0 {
		cfg.Band = domain.DefaultAnswerBand
	}
	if cfg.ContextChunks <= 0 {
		cfg.ContextChunks = 2
	}
	return &Composer{
		llm:     llm,
		prompts: prompts,
		cfg:     cfg,
	}
}

// Compose produces an answer for the query from the retrieval hits.
func (c *Composer) Compose(ctx context.Context, query string, hits []domain.SearchHit) domain.Answer {
	var bestScore float64
	if len(hits) > 0 {
		bestScore = hits[0].Score
	}

	if c.llm != nil && bestScore >= c.cfg.Threshold {
		text, err := c.generateGrounded(ctx, query, hits)
		if err == nil {
			return domain.Answer{Text: text, Tier: domain.TierGrounded, BestScore: bestScore, Hits: hits}
		}
		logger.Debug("grounded tier failed: %v", err)
	}

	if c.llm != nil {
		text, err := c.generateUngrounded(ctx, query)
		if err == nil {
			return domain.Answer{Text: text, Tier: domain.TierUngrounded, BestScore: bestScore, Hits: hits}
		}
		logger.Debug("ungrounded tier failed: %v", err)
	}

	if len(hits) > 0 && bestScore >= c.cfg.Threshold {
		return domain.Answer{
			Text:      chunkAnswer(hits[0].Chunk),
			Tier:      domain.TierVerbatim,
			BestScore: bestScore,
			Hits:      hits,
		}
	}

	return domain.Answer{Text: c.cfg.SafeResponse, Tier: domain.TierSafe, BestScore: bestScore, Hits: hits}
}

func (c *Composer) generateGrounded(ctx context.Context, query string, hits []domain.SearchHit) (string, error) {
	tmpl, err := c.prompts.Load(driven.PromptName(driven.PromptGroundedAnswer, c.cfg.Language))
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(tmpl, c.buildContext(hits), query)
	return c.generate(ctx, prompt)
}

func (c *Composer) generateUngrounded(ctx context.Context, query string) (string, error) {
	tmpl, err := c.prompts.Load(driven.PromptName(driven.PromptUngroundedAnswer, c.cfg.Language))
	if err != nil {
		return "", err
	}
	return c.generate(ctx, fmt.Sprintf(tmpl, query))
}

func (c *Composer) generate(ctx context.Context, prompt string) (string, error) {
	raw, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: DefaultTemperature,
	})
	if err != nil {
		return "", err
	}

	text := domain.CleanAnswer(raw)
	if !c.cfg.Band.Accepts(text) {
		return "", fmt.Errorf("%w: %d characters outside band [%d, %d]",
			domain.ErrAnswerRejected, len([]rune(text)), c.cfg.Band.Min, c.cfg.Band.Max)
	}
	return text, nil
}

// buildContext joins the top chunks into the prompt context block.
func (c *Composer) buildContext(hits []domain.SearchHit) string {
	n := min(c.cfg.ContextChunks, len(hits))

	parts := make([]string, 0, n)
	for _, hit := range hits[:n] {
		parts = append(parts, strings.TrimSpace(hit.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// chunkAnswer extracts the answer text from a chunk for the verbatim
// tier. Corpus records carry "P:" (question) and "R:" (answer) line
// markers; only the answer lines are returned when present.
func chunkAnswer(chunk domain.Chunk) string {
	var answer []string
	inAnswer := false

	for _, line := range strings.Split(chunk.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "R:"):
			inAnswer = true
			answer = append(answer, strings.TrimSpace(strings.TrimPrefix(trimmed, "R:")))
		case strings.HasPrefix(trimmed, "P:"):
			inAnswer = false
		case inAnswer && trimmed != "":
			answer = append(answer, trimmed)
		}
	}

	if len(answer) == 0 {
		return domain.CleanAnswer(chunk.Content)
	}
	return strings.Join(answer, "\n")
}
