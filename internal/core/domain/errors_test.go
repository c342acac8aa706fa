package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrExtraction", ErrExtraction},
		{"ErrChunking", ErrChunking},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrIndexWrite", ErrIndexWrite},
		{"ErrIndexQuery", ErrIndexQuery},
		{"ErrRetrieval", ErrRetrieval},
		{"ErrSynthesis", ErrSynthesis},
		{"ErrDocumentNotReady", ErrDocumentNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappingPreservesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("%w: pdftotext exited 1", ErrExtraction)

	assert.True(t, errors.Is(wrapped, ErrExtraction))
	assert.False(t, errors.Is(wrapped, ErrChunking))
}

func TestErrors_RetrievalWrapsIndexQuery(t *testing.T) {
	inner := fmt.Errorf("%w: namespace %q holds no entries", ErrIndexQuery, "doc_abc")
	wrapped := fmt.Errorf("%w: %w", ErrRetrieval, inner)

	assert.True(t, errors.Is(wrapped, ErrRetrieval))
	assert.True(t, errors.Is(wrapped, ErrIndexQuery))
}
