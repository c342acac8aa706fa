package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedMIMETypes(t *testing.T) {
	extractor := New()
	mimeTypes := extractor.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "application/pdf")
	assert.Len(t, mimeTypes, 1)
}

func TestExtract_EmptyInput(t *testing.T) {
	extractor := New()

	pages, err := extractor.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, pages)
}

func TestExtract_RunnerFailure(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{err: errors.New("exit status 1")}))

	pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4 garbage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, pages)
}

func TestExtract_NoExtractableText(t *testing.T) {
	// Scanned PDFs produce only whitespace and form feeds.
	extractor := New(WithRunner(&mockRunner{output: []byte("\n\f\n\f")}))

	pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, pages)
}

func TestExtract_PageBoundaries(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{
		output: []byte("first page\n\fsecond page\n\f\fthird page with content\n\f"),
	}))

	pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, pages, 4)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "first page", pages[0].Text)
	assert.Equal(t, "second page", pages[1].Text)

	// The empty page is retained so numbering stays accurate.
	assert.Equal(t, 3, pages[2].Number)
	assert.Empty(t, pages[2].Text)

	assert.Equal(t, 4, pages[3].Number)
	assert.Equal(t, "third page with content", pages[3].Text)
}

func TestExtract_SinglePageWithoutTrailingFormFeed(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{output: []byte("only page")}))

	pages, err := extractor.Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "only page", pages[0].Text)
}
