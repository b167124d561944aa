package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and backend status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	st, err := services.Chat.Status(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		return outputStatusJSON(cmd, st)
	}
	return outputStatusText(cmd, st)
}

func outputStatusText(cmd *cobra.Command, st driving.Status) error {
	cmd.Printf("Corpus:    %s\n", st.DocsPath)
	cmd.Printf("Embedding: %s\n", st.EmbeddingModel)
	if st.GeneratorModel != "" {
		cmd.Printf("Generator: %s\n", st.GeneratorModel)
	} else {
		cmd.Println("Generator: disabled (retrieval-only answers)")
	}

	if st.IndexReady {
		cmd.Printf("Index:     ready, %d chunks (built %s)\n",
			st.Manifest.ChunkCount, st.Manifest.BuiltAt.Format("2006-01-02 15:04"))
	} else {
		cmd.Println("Index:     not ready")
	}
	cmd.Printf("History:   %d turns\n", st.Turns)

	for _, w := range st.Warnings {
		cmd.Printf("Warning:   %s\n", w)
	}
	return nil
}

func outputStatusJSON(cmd *cobra.Command, st driving.Status) error {
	out := struct {
		DocsPath       string   `json:"docs_path"`
		EmbeddingModel string   `json:"embedding_model"`
		GeneratorModel string   `json:"generator_model,omitempty"`
		IndexReady     bool     `json:"index_ready"`
		ChunkCount     int      `json:"chunk_count"`
		Turns          int      `json:"turns"`
		Warnings       []string `json:"warnings,omitempty"`
	}{
		DocsPath:       st.DocsPath,
		EmbeddingModel: st.EmbeddingModel,
		GeneratorModel: st.GeneratorModel,
		IndexReady:     st.IndexReady,
		ChunkCount:     st.Manifest.ChunkCount,
		Turns:          st.Turns,
		Warnings:       st.Warnings,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
