// Package file provides file-based configuration and prompt stores.
// Configuration lives in a TOML file within the respondo config
// directory; prompt templates are user-editable files beside it.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

// Defaults for the answer policy.
const (
	DefaultChunkSize     = 800
	DefaultOverlap       = 120
	DefaultTopK          = 5
	DefaultThreshold     = 0.4
	DefaultContextChunks = 2
	DefaultAnswerMinLen  = 15
	DefaultAnswerMaxLen  = 400
	DefaultMaxTokens     = 256
	DefaultLanguage      = "pt"
	DefaultSafeResponse  = "Desculpe, não consegui encontrar uma resposta. " +
		"Tente reformular a pergunta ou fale com nosso suporte."
)

// Config is the application configuration, loaded from TOML with
// defaults applied for every missing key.
type Config struct {
	// DocsPath is the corpus directory.
	DocsPath string `toml:"docs_path"`

	// IndexDir holds the vector index, chunk metadata log and manifest.
	IndexDir string `toml:"index_dir"`

	// HistoryPath is the conversation history location (file for the
	// jsonl backend, database for sqlite).
	HistoryPath string `toml:"history_path"`

	// HistoryBackend selects "jsonl" (default) or "sqlite".
	HistoryBackend string `toml:"history_backend"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Answer    AnswerConfig    `toml:"answer"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Generator GeneratorConfig `toml:"generator"`
}

// ChunkingConfig is the chunk window geometry in runes.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig tunes nearest-neighbour retrieval.
type RetrievalConfig struct {
	// TopK is how many chunks to retrieve per query.
	TopK int `toml:"top_k"`

	// Threshold is the minimum best-hit similarity for grounded
	// generation.
	Threshold float64 `toml:"threshold"`

	// ContextChunks is how many retrieved chunks feed the prompt.
	ContextChunks int `toml:"context_chunks"`
}

// AnswerConfig tunes answer validation and the safe response.
type AnswerConfig struct {
	MinLength    int    `toml:"min_length"`
	MaxLength    int    `toml:"max_length"`
	MaxTokens    int    `toml:"max_tokens"`
	Language     string `toml:"language"`
	SafeResponse string `toml:"safe_response"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key
	// for cloud providers. Keys never live in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

// GeneratorConfig selects and tunes the generation backend.
// An empty provider disables generation; the composer then answers
// from retrieval and the safe response only.
type GeneratorConfig struct {
	// Provider is "ollama", "openai", "tgi" or empty.
	Provider string `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// FallbackModel is tried once when the configured model fails to
	// answer a startup ping.
	FallbackModel string `toml:"fallback_model"`

	APIKeyEnv      string `toml:"api_key_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DefaultConfig returns the configuration used when no file exists.
// All paths live under dataDir (default ~/.respondo).
func DefaultConfig(dataDir string) Config {
	return Config{
		DocsPath:       filepath.Join(dataDir, "data"),
		IndexDir:       filepath.Join(dataDir, "index"),
		HistoryPath:    filepath.Join(dataDir, "history", "chat_history.jsonl"),
		HistoryBackend: "jsonl",
		Chunking: ChunkingConfig{
			Size:    DefaultChunkSize,
			Overlap: DefaultOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK:          DefaultTopK,
			Threshold:     DefaultThreshold,
			ContextChunks: DefaultContextChunks,
		},
		Answer: AnswerConfig{
			MinLength:    DefaultAnswerMinLen,
			MaxLength:    DefaultAnswerMaxLen,
			MaxTokens:    DefaultMaxTokens,
			Language:     DefaultLanguage,
			SafeResponse: DefaultSafeResponse,
		},
		Embedding: EmbeddingConfig{
			Provider: string(domain.AIProviderOllama),
		},
		Generator: GeneratorConfig{
			Provider: string(domain.AIProviderOllama),
		},
	}
}

// DefaultDataDir returns ~/.respondo.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".respondo"), nil
}

// Load reads the config file at path, applying defaults for missing
// keys. A missing file returns pure defaults, not an error.
func Load(path, dataDir string) (Config, error) {
	cfg := DefaultConfig(dataDir)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Overrides are per-run command-line settings layered over the loaded
// configuration. Zero values leave the file's value in place. Overlap
// is a pointer because zero overlap is a meaningful override.
type Overrides struct {
	DocsPath  string
	ChunkSize int
	Overlap   *int
	TopK      int
	MaxTokens int
}

// Apply layers the overrides over cfg and revalidates the result.
func (o Overrides) Apply(cfg Config) (Config, error) {
	if o.DocsPath != "" {
		cfg.DocsPath = o.DocsPath
	}
	if o.ChunkSize > 0 {
		cfg.Chunking.Size = o.ChunkSize
	}
	if o.Overlap != nil {
		cfg.Chunking.Overlap = *o.Overlap
	}
	if o.TopK > 0 {
		cfg.Retrieval.TopK = o.TopK
	}
	if o.MaxTokens > 0 {
		cfg.Answer.MaxTokens = o.MaxTokens
	}
	return cfg, cfg.validate()
}

// validate rejects configurations the pipeline cannot run with.
func (c Config) validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrInvalidInput)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, chunking.size)", domain.ErrInvalidInput)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidInput)
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		return fmt.Errorf("%w: retrieval.threshold must be a similarity in [-1, 1]", domain.ErrInvalidInput)
	}
	if c.Answer.MinLength <= 0 || c.Answer.MaxLength < c.Answer.MinLength {
		return fmt.Errorf("%w: answer length band is inverted", domain.ErrInvalidInput)
	}
	if c.Answer.Language != "pt" && c.Answer.Language != "en" {
		return fmt.Errorf("%w: answer.language must be \"pt\" or \"en\"", domain.ErrInvalidInput)
	}
	if c.HistoryBackend != "jsonl" && c.HistoryBackend != "sqlite" {
		return fmt.Errorf("%w: history_backend must be \"jsonl\" or \"sqlite\"", domain.ErrInvalidInput)
	}
	return nil
}

// EmbeddingTimeout returns the embedding request timeout.
func (c EmbeddingConfig) EmbeddingTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GeneratorTimeout returns the generation request timeout.
func (c GeneratorConfig) GeneratorTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIKey resolves the configured API key environment variable.
func (c EmbeddingConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// APIKey resolves the configured API key environment variable.
func (c GeneratorConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
