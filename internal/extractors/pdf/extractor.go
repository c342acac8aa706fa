// Package pdf provides a text extractor for PDF documents backed by the
// poppler pdftotext utility.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor converts PDF bytes into per-page text using pdftotext.
// pdftotext separates pages with form feed characters, which gives the
// page boundaries citations depend on.
type Extractor struct {
	runner driven.CommandRunner
}

// Option configures the extractor.
type Option func(*Extractor)

// WithRunner overrides the command runner. Used in tests.
func WithRunner(r driven.CommandRunner) Option {
	return func(e *Extractor) {
		e.runner = r
	}
}

// New creates a new PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns the ordered page sequence of the PDF.
// Pages with no text are retained so page numbering stays accurate.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrExtraction)
	}

	tmp, err := os.CreateTemp("", "veridoc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", domain.ErrExtraction, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: write temp file: %w", domain.ErrExtraction, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %w", domain.ErrExtraction, err)
	}

	// "-" writes to stdout; pages arrive separated by \f.
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext: %w", domain.ErrExtraction, err)
	}

	pages := splitPages(string(out))
	if !hasText(pages) {
		return nil, fmt.Errorf("%w: document contains no extractable text", domain.ErrExtraction)
	}
	return pages, nil
}

// splitPages splits pdftotext output on form feeds. pdftotext emits a
// trailing \f after the final page, so a single trailing empty piece is
// dropped; interior empty pages are kept.
func splitPages(out string) []domain.Page {
	pieces := strings.Split(out, "\f")
	if n := len(pieces); n > 1 && pieces[n-1] == "" {
		pieces = pieces[:n-1]
	}

	pages := make([]domain.Page, len(pieces))
	for i, piece := range pieces {
		pages[i] = domain.Page{Number: i + 1, Text: strings.TrimRight(piece, "\n")}
	}
	return pages
}

// hasText reports whether any page holds non-whitespace content.
func hasText(pages []domain.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", filepath.Base(name), err)
	}
	return exec.CommandContext(ctx, path, args...).Output()
}
