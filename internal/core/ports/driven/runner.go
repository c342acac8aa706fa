package driven

import "context"

// CommandRunner executes an external command and returns its stdout.
// It exists so adapters that shell out (e.g. pdftotext) can be tested
// without the binary installed.
type CommandRunner interface {
	// Run executes the command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
