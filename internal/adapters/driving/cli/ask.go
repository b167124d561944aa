package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
)

var (
	askJSON    bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Long: `Answers one question against the built index and prints the result.
Useful for scripting; use 'respondo chat' for an interactive session.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "show the retrieved sources")
	askCmd.Flags().IntVar(&flagTopK, "top-k", 0, "chunks retrieved per question (overrides the config file)")
	askCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "generation token cap (overrides the config file)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if services.Ready != nil {
		if err := services.Ready(ctx); err != nil {
			return err
		}
	}

	answer, err := services.Chat.Answer(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, args[0], answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) error {
	cmd.Println(answer.Text)

	if askSources && len(answer.Hits) > 0 {
		cmd.Println()
		cmd.Printf("Sources (%s, best score %.2f):\n", answer.Tier, answer.BestScore)
		for _, hit := range answer.Hits {
			cmd.Printf("  %s#%d (%.2f)\n", hit.Chunk.Source, hit.Chunk.Position, hit.Score)
		}
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, query string, answer domain.Answer) error {
	refs := make([]domain.ChunkRef, 0, len(answer.Hits))
	for _, hit := range answer.Hits {
		refs = append(refs, hit.Ref())
	}

	out := struct {
		Query     string            `json:"query"`
		Answer    string            `json:"answer"`
		Tier      domain.AnswerTier `json:"tier"`
		BestScore float64           `json:"best_score"`
		Sources   []domain.ChunkRef `json:"sources"`
	}{query, answer.Text, answer.Tier, answer.BestScore, refs}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
