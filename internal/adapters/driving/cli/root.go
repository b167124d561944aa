// Package cli implements the respondo command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/respondo-labs/respondo-cli/internal/adapters/driven/config/file"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driven"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
	"github.com/respondo-labs/respondo-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool
)

// Per-run overrides of config file settings, bound by the commands
// the setting belongs to: indexing geometry on index, query knobs on
// ask and chat.
var (
	flagDocsPath  string
	flagChunkSize int
	flagOverlap   int
	flagTopK      int
	flagMaxTokens int
)

// flagOverrides collects the override flags the invoked command set.
func flagOverrides() file.Overrides {
	ov := file.Overrides{
		DocsPath:  flagDocsPath,
		ChunkSize: flagChunkSize,
		TopK:      flagTopK,
		MaxTokens: flagMaxTokens,
	}
	if f := indexCmd.Flags().Lookup("overlap"); f != nil && f.Changed {
		ov.Overlap = &flagOverlap
	}
	return ov
}

// Services are the application services the commands run against.
type Services struct {
	Index   driving.IndexService
	Chat    driving.ChatService
	History driven.HistoryStore

	// Ready verifies the index exists and matches the configuration.
	// Called before a chat session or a one-shot question.
	Ready func(ctx context.Context) error

	// Watch blocks, rebuilding the index as the corpus changes, until
	// the context is cancelled.
	Watch func(ctx context.Context) error
}

var services *Services

// bootstrap builds the services from the config file once a command
// needs them. Injected by main; tests inject services directly.
var bootstrap func(ctx context.Context, configPath string, overrides file.Overrides) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "respondo",
	Short: "FAQ chatbot over your own documents",
	Long: `Respondo answers questions from a local FAQ corpus.

Documents are chunked and embedded into a local vector index; answers
are retrieved by similarity and, when a generation backend is
configured, rephrased by a language model grounded on the retrieved
context.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.respondo/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap injects the service constructor used by commands that
// need the application wired up.
func SetBootstrap(fn func(ctx context.Context, configPath string, overrides file.Overrides) (*Services, error)) {
	bootstrap = fn
}

// SetServices injects pre-built services, bypassing bootstrap.
func SetServices(s *Services) {
	services = s
}

// ensureServices lazily builds the services so commands like version
// and help never touch the config or the AI backends.
func ensureServices(ctx context.Context) error {
	if services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}
	s, err := bootstrap(ctx, cfgPath, flagOverrides())
	if err != nil {
		return err
	}
	services = s
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, so
// Ctrl+C cancels in-flight index builds and chat requests.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
