package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document for question answering",
	Long: `Extract, chunk, embed and index a document. The document becomes
queryable only once every segment is indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireQAService(); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := qaService.Ingest(cmd.Context(), data, filepath.Base(path))
	if err != nil {
		if doc != nil && doc.FailureStage != "" {
			return fmt.Errorf("ingestion failed during %s: %w", doc.FailureStage, err)
		}
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	cmd.Printf("Indexed %q\n\n", doc.Title)
	cmd.Printf("  ID:     %s\n", doc.ID)
	cmd.Printf("  Pages:  %d\n", doc.Pages)
	cmd.Printf("  Status: %s\n", doc.Status)
	return nil
}
