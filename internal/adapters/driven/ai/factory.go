// Package ai constructs embedding and generation services from
// configuration, validating each backend with a short ping before the
// application commits to an index build or a chat session.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/config/file"
	embollama "github.com/respondo-labs/respondo-cli/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/respondo-labs/respondo-cli/internal/adapters/driven/embedding/openai"
	llmollama "github.com/respondo-labs/respondo-cli/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/respondo-labs/respondo-cli/internal/adapters/driven/llm/openai"
	llmtgi "github.com/respondo-labs/respondo-cli/internal/adapters/driven/llm/tgi"
	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// pingTimeout bounds the startup reachability check per service.
const pingTimeout = 5 * time.Second

// NewEmbeddingService builds and pings the configured embedding backend.
func NewEmbeddingService(ctx context.Context, cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	var (
		svc driven.EmbeddingService
		err error
	)

	switch domain.AIProvider(cfg.Provider) {
	case domain.AIProviderOllama:
		svc = embollama.NewEmbeddingService(embollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.EmbeddingTimeout(),
		})
	case domain.AIProviderOpenAI:
		svc, err = embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:     cfg.APIKey(),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.EmbeddingTimeout(),
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, cfg.Provider)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrEmbeddingUnavailable, cfg.Provider, err)
	}
	return svc, nil
}

// NewLLMService builds and pings the configured generation backend.
// An empty provider returns (nil, nil): generation is optional and the
// composer degrades to retrieval-only answers. When the configured
// model fails the ping, the fallback model is tried once before giving
// up.
func NewLLMService(ctx context.Context, cfg file.GeneratorConfig) (driven.LLMService, error) {
	if cfg.Provider == "" {
		return nil, nil
	}

	svc, err := buildLLM(cfg, cfg.Model)
	if err != nil {
		return nil, err
	}

	pingErr := ping(ctx, svc.Ping)
	if pingErr == nil {
		return svc, nil
	}
	svc.Close()

	if cfg.FallbackModel == "" || cfg.FallbackModel == cfg.Model {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLLMUnavailable, cfg.Provider, pingErr)
	}

	logger.Warn("generator model %q unavailable (%v), trying fallback %q",
		cfg.Model, pingErr, cfg.FallbackModel)

	svc, err = buildLLM(cfg, cfg.FallbackModel)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLLMUnavailable, cfg.Provider, err)
	}
	return svc, nil
}

func buildLLM(cfg file.GeneratorConfig, model string) (driven.LLMService, error) {
	switch domain.AIProvider(cfg.Provider) {
	case domain.AIProviderOllama:
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   model,
			Timeout: cfg.GeneratorTimeout(),
		}), nil
	case domain.AIProviderOpenAI:
		return llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL,
			Model:   model,
			Timeout: cfg.GeneratorTimeout(),
		})
	case domain.AIProviderTGI:
		// TGI serves one model chosen at server start; the model key is
		// not used.
		return llmtgi.NewLLMService(llmtgi.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.GeneratorTimeout(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown generator provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
