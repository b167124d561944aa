package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyFeedback string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation turns",
	Long: `Prints recent conversation turns, newest first.

Feedback can be recorded against a turn:
  respondo history --feedback <turn-id>:up
  respondo history --feedback <turn-id>:down`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of turns")
	historyCmd.Flags().StringVar(&historyFeedback, "feedback", "", "record feedback as <turn-id>:<up|down>")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	if historyFeedback != "" {
		id, rating, err := parseFeedback(historyFeedback)
		if err != nil {
			return err
		}
		if err := services.History.SetFeedback(ctx, id, rating); err != nil {
			return fmt.Errorf("record feedback: %w", err)
		}
		cmd.Printf("Recorded %s for turn %s\n", rating, id)
		return nil
	}

	turns, err := services.History.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(turns) == 0 {
		cmd.Println("No conversation history yet.")
		return nil
	}

	for _, turn := range turns {
		marker := ""
		if turn.Feedback != "" {
			marker = " [" + turn.Feedback + "]"
		}
		cmd.Printf("%s  %s (%s)%s\n", turn.Timestamp.Format("2006-01-02 15:04"), turn.ID, turn.Tier, marker)
		cmd.Printf("  Q: %s\n", turn.Query)
		cmd.Printf("  A: %s\n", turn.Answer)
		cmd.Println()
	}
	return nil
}

func parseFeedback(s string) (id, rating string, err error) {
	id, rating, ok := strings.Cut(s, ":")
	if !ok || id == "" || (rating != "up" && rating != "down") {
		return "", "", fmt.Errorf("invalid feedback %q: expected <turn-id>:<up|down>", s)
	}
	return id, rating, nil
}
