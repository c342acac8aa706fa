// Package plaintext provides a text extractor for plain text and
// Markdown documents.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text content. Form feed characters, when
// present, mark page breaks; otherwise the whole document is one page.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
	}
}

// Extract returns the page sequence for the document.
func (e *Extractor) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrExtraction)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", domain.ErrExtraction)
	}

	content := string(data)
	if strings.TrimSpace(strings.ReplaceAll(content, "\f", "")) == "" {
		return nil, fmt.Errorf("%w: document contains no extractable text", domain.ErrExtraction)
	}

	pieces := strings.Split(content, "\f")
	pages := make([]domain.Page, len(pieces))
	for i, piece := range pieces {
		pages[i] = domain.Page{Number: i + 1, Text: piece}
	}
	return pages, nil
}
