package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Start an interactive question session for a document",
	Long: `Launch an interactive chat over one ingested document. Each answer
is grounded in the document and cites the supporting segments.

Controls:
  Enter - Ask
  Esc   - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := requireQAService(); err != nil {
		return err
	}

	// Panic recovery keeps a stack trace visible if the TUI crashes.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	docs, err := qaService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	docID := args[0]
	for i := range docs {
		if docs[i].ID != docID {
			continue
		}

		chat := tui.NewChat(qaService, &docs[i]).WithContext(cmd.Context())
		p := tea.NewProgram(chat, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat error: %w", err)
		}
		return nil
	}

	return fmt.Errorf("document %s not found", docID)
}
