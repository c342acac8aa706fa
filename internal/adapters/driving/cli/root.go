// Package cli implements the command-line interface, a driving adapter
// over the document question-answering service.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veridoc/internal/core/ports/driving"
	"github.com/custodia-labs/veridoc/internal/logger"
)

// version is the application version, overridable at build time via
// -ldflags "-X .../cli.version=...".
var version = "0.1.0"

// qaService is the document QA service used by all commands.
// Set by the main wiring (or tests) before Execute.
var qaService driving.DocumentQA

// verbose enables debug logging.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "veridoc",
	Short: "Ask questions about your documents",
	Long: `VeriDoc ingests documents (PDF, plain text, Markdown), indexes their
content for similarity search, and answers questions grounded in the
document with page-level citations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetQAService sets the document QA service used by the commands.
func SetQAService(svc driving.DocumentQA) {
	qaService = svc
}

// requireQAService guards commands that need the service configured.
func requireQAService() error {
	if qaService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
