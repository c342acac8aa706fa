package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [doc-id] [question]", askCmd.Use)
}

func TestAskCmd_RequiresDocIDAndQuestion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123", "how", "long", "is", "the", "warranty?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "doc_abc123", mock.lastDocID)
	assert.Equal(t, "how long is the warranty?", mock.lastQuestion)
	assert.Contains(t, buf.String(), "The warranty lasts two years.")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "segment 0 (page 2)")
	assert.Contains(t, buf.String(), "segment 1 (pages 2, 3)")
}

func TestAskCmd_PassesTopK(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123", "question?", "--top-k", "8"})
	defer func() {
		rootCmd.SetArgs(nil)
		askTopK = 0
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 8, mock.lastTopK)
}

func TestAskCmd_UngroundedAnswerHasNoSources(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()
	mock.answer = &domain.Answer{
		Text:     domain.InsufficientGroundingText,
		Grounded: false,
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123", "unrelated", "question?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), domain.InsufficientGroundingText)
	assert.NotContains(t, buf.String(), "Sources:")
}

func TestAskCmd_DocumentNotReady(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()
	mock.askErr = fmt.Errorf("%w: document doc_abc123 is pending", domain.ErrDocumentNotReady)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123", "question?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	previous := qaService
	qaService = nil
	defer func() { qaService = previous }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "doc_abc123", "question?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
