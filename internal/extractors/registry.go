// Package extractors wires text extractors into a registry keyed by MIME
// type and resolves the MIME type of uploaded files.
package extractors

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// extensionMIMETypes maps well-known file extensions to MIME types.
// Extension wins over content sniffing because sniffing cannot tell
// Markdown from plain text.
var extensionMIMETypes = map[string]string{
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// Registry holds extractors keyed by the MIME types they support.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates a registry over the given extractors. Later
// extractors win when two claim the same MIME type.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byMIME: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, mt := range e.SupportedMIMETypes() {
			r.byMIME[mt] = e
		}
	}
	return r
}

// ForMIMEType returns the extractor for the given MIME type.
func (r *Registry) ForMIMEType(mimeType string) (driven.Extractor, error) {
	e, ok := r.byMIME[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, mimeType)
	}
	return e, nil
}

// DetectMIMEType resolves the MIME type of an uploaded file from its
// extension, falling back to content sniffing.
func DetectMIMEType(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := extensionMIMETypes[ext]; ok {
		return mt
	}

	sniffed := http.DetectContentType(data)
	// DetectContentType appends charset parameters to text types.
	if mt, _, ok := strings.Cut(sniffed, ";"); ok {
		return strings.TrimSpace(mt)
	}
	return sniffed
}
