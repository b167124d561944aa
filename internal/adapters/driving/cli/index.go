package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexWatch bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index from the document corpus",
	Long: `Loads every .txt and .jsonl file from the corpus directory, chunks
the text, embeds each chunk and rebuilds the vector index. The previous
index is replaced atomically; a failed build leaves it untouched.`,
}

func init() {
	indexCmd.RunE = runIndex
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep running and rebuild when corpus files change")
	indexCmd.Flags().StringVar(&flagDocsPath, "docs-path", "", "corpus directory (overrides the config file)")
	indexCmd.Flags().IntVar(&flagChunkSize, "chunk-size", 0, "chunk window size in characters (overrides the config file)")
	indexCmd.Flags().IntVar(&flagOverlap, "overlap", 0, "chunk overlap in characters (overrides the config file)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	manifest, err := services.Index.Build(ctx)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %s\n", manifest.ChunkCount, manifest.DocsPath)
	cmd.Printf("  embedding model: %s (%d dimensions)\n", manifest.EmbeddingModel, manifest.Dimensions)
	cmd.Printf("  chunking: %d chars, %d overlap\n", manifest.ChunkSize, manifest.Overlap)

	if !indexWatch {
		return nil
	}
	if services.Watch == nil {
		return errors.New("watch mode not configured")
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	if err := services.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
