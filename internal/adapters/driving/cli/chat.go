package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/respondo-labs/respondo-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts an interactive terminal chat against the FAQ index.

Controls:
  Enter      - Send the question
  ↑/↓, PgUp  - Scroll the conversation
  Ctrl+C     - Quit

Type /status for index state, /show for the last retrieved passages,
/help for commands, or /sair to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVar(&flagTopK, "top-k", 0, "chunks retrieved per question (overrides the config file)")
	chatCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "generation token cap (overrides the config file)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps the stack trace visible after the
	// alt-screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if services.Ready != nil {
		if err := services.Ready(ctx); err != nil {
			return err
		}
	}

	model := tui.New(services.Chat)
	model.WithContext(ctx)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
