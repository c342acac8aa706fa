package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status [doc-id]", statusCmd.Use)
}

func TestStatusCmd_Executes(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status", "doc_abc123"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "doc_abc123", mock.lastDocID)
	assert.Contains(t, buf.String(), "doc_abc123: indexed")
}

func TestStatusCmd_UnknownDocument(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()
	mock.statusErr = fmt.Errorf("%w: document doc_nope", domain.ErrNotFound)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"status", "doc_nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get status")
}
