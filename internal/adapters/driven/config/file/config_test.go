package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkMaxTokens, cfg.Chunking.MaxTokens)
	assert.Equal(t, DefaultChunkOverlapTokens, cfg.Chunking.OverlapTokens)
	assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)
	assert.Equal(t, DefaultContextBudgetChars, cfg.Synthesis.ContextBudgetChars)
	assert.Equal(t, DefaultVectorBackend, cfg.Vector.Backend)
	assert.Equal(t, DefaultEmbeddingProvider, cfg.Embedding.Provider)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[chunking]
max_tokens = 500

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "sk-test"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunking.MaxTokens)
	// Omitted fields keep their defaults.
	assert.Equal(t, DefaultChunkOverlapTokens, cfg.Chunking.OverlapTokens)
	assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)

	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[chunking]
max_tokens = 100
overlap_tokens = 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overlap_tokens")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Chunking.MaxTokens = 800
	cfg.Vector.Backend = "qdrant"
	cfg.Vector.BaseURL = "http://localhost:6333"

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 800, loaded.Chunking.MaxTokens)
	assert.Equal(t, "qdrant", loaded.Vector.Backend)
	assert.Equal(t, "http://localhost:6333", loaded.Vector.BaseURL)
}

func TestSave_RestrictedPermissions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Default()))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"zero max tokens", func(c *Config) { c.Chunking.MaxTokens = 0 }, "max_tokens"},
		{"negative overlap", func(c *Config) { c.Chunking.OverlapTokens = -1 }, "overlap_tokens"},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }, "top_k"},
		{"zero budget", func(c *Config) { c.Synthesis.ContextBudgetChars = 0 }, "context_budget_chars"},
		{"zero concurrency", func(c *Config) { c.Ingestion.Concurrency = 0 }, "concurrency"},
		{"zero batch size", func(c *Config) { c.Ingestion.BatchSize = 0 }, "batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
