package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/ai"
	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/config/file"
	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/storage/jsonl"
	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/storage/sqlite"
	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/vector/flat"
	"github.com/respondo-labs/respondo-cli/internal/adapters/driving/cli"
	"github.com/respondo-labs/respondo-cli/internal/chunker"
	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/core/services"
	"github.com/respondo-labs/respondo-cli/internal/loader"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap wires the adapters to the core services from the config
// file, with per-run flag overrides layered on top. It runs lazily,
// only for commands that need the application.
func bootstrap(ctx context.Context, configPath string, overrides file.Overrides) (*cli.Services, error) {
	dataDir, err := file.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.toml")
	}

	cfg, err := file.Load(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	cfg, err = overrides.Apply(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.IndexDir, 0700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	embedder, err := ai.NewEmbeddingService(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	llm, err := ai.NewLLMService(ctx, cfg.Generator)
	if err != nil {
		return nil, err
	}

	index, err := flat.Open(filepath.Join(cfg.IndexDir, "vectors.idx"))
	if err != nil {
		return nil, err
	}
	chunkLog := jsonl.NewChunkLog(filepath.Join(cfg.IndexDir, "chunks.jsonl"))
	manifests := jsonl.NewManifestStore(filepath.Join(cfg.IndexDir, "settings.json"))

	history, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}

	prompts := file.NewPromptStore(filepath.Join(filepath.Dir(configPath), "prompts"))

	ck := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	indexer := services.NewIndexer(
		services.IndexerConfig{DocsPath: cfg.DocsPath},
		loader.New(), ck, embedder, index, chunkLog, manifests,
	)
	retriever := services.NewRetriever(embedder, index, chunkLog)
	composer := services.NewComposer(llm, prompts, services.ComposerConfig{
		Threshold:     cfg.Retrieval.Threshold,
		ContextChunks: cfg.Retrieval.ContextChunks,
		MaxTokens:     cfg.Answer.MaxTokens,
		Band:          domain.AnswerBand{Min: cfg.Answer.MinLength, Max: cfg.Answer.MaxLength},
		Language:      cfg.Answer.Language,
		SafeResponse:  cfg.Answer.SafeResponse,
	})
	chat := services.NewChat(
		services.ChatConfig{
			DocsPath:  cfg.DocsPath,
			TopK:      cfg.Retrieval.TopK,
			ChunkSize: cfg.Chunking.Size,
			Overlap:   cfg.Chunking.Overlap,
		},
		retriever, composer, history, index, chunkLog, manifests, embedder, llm,
	)
	watcher := services.NewWatcher(indexer, retriever, cfg.DocsPath, 0)

	return &cli.Services{
		Index:   indexer,
		Chat:    chat,
		History: history,
		Ready:   chat.EnsureReady,
		Watch:   watcher.Run,
	}, nil
}

func openHistory(cfg file.Config) (driven.HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	switch cfg.HistoryBackend {
	case "sqlite":
		path := cfg.HistoryPath
		if filepath.Ext(path) == ".jsonl" {
			path = path[:len(path)-len(".jsonl")] + ".db"
		}
		return sqlite.NewHistoryStore(path)
	default:
		return jsonl.NewHistoryStore(cfg.HistoryPath), nil
	}
}
