package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// askTopK is the number of segments to retrieve.
var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about an ingested document",
	Long: `Answer a question using only the document's indexed content. The
answer cites the segments and pages it was grounded on.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Number of segments to retrieve (0 = default)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireQAService(); err != nil {
		return err
	}

	docID := args[0]
	question := strings.Join(args[1:], " ")

	answer, err := qaService.Ask(cmd.Context(), docID, question, askTopK)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotReady) {
			return fmt.Errorf("document %s is not ready; check `veridoc status %s`", docID, docID)
		}
		return fmt.Errorf("failed to answer: %w", err)
	}

	cmd.Println(answer.Text)

	if len(answer.Citations) > 0 {
		cmd.Println("\nSources:")
		for _, c := range answer.Citations {
			cmd.Printf("  segment %d (%s)\n", c.SegmentIndex, formatPages(c.Pages))
		}
	}
	return nil
}

// formatPages renders a page list as "page 3" or "pages 3, 4".
func formatPages(pages []int) string {
	if len(pages) == 0 {
		return "no pages"
	}

	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	if len(pages) == 1 {
		return "page " + parts[0]
	}
	return "pages " + strings.Join(parts, ", ")
}
