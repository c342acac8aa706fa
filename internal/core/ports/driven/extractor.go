package driven

import (
	"context"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// Extractor converts an uploaded document's bytes into ordered pages of
// raw text. Each extractor handles specific MIME types (e.g. PDF, plain
// text). Extraction is a pure transform with no side effects.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the ordered page sequence for the document.
	// Pages with empty text are retained so downstream page numbering
	// stays accurate. Fails wrapping domain.ErrExtraction when the
	// container is unreadable or contains no extractable text at all.
	Extract(ctx context.Context, data []byte) ([]domain.Page, error)
}

// ExtractorRegistry selects an extractor for a document by MIME type.
type ExtractorRegistry interface {
	// ForMIMEType returns the extractor for the given MIME type, or
	// domain.ErrUnsupportedType if none is registered.
	ForMIMEType(mimeType string) (Extractor, error)
}
