// Package file provides TOML-backed configuration loading.
// Configuration lives in ~/.veridoc/config.toml; every field has a
// default so a missing file yields a working local setup.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultChunkMaxTokens     = 1000
	DefaultChunkOverlapTokens = 200
	DefaultTopK               = 4
	DefaultContextBudgetChars = 8000
	DefaultConcurrency        = 4
	DefaultBatchSize          = 16
	DefaultRequestsPerSecond  = 10
	DefaultEmbeddingProvider  = "ollama"
	DefaultLLMProvider        = "ollama"
	DefaultVectorBackend      = "memory"
)

// Config is the full application configuration.
type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Embedding ProviderConfig  `toml:"embedding"`
	LLM       ProviderConfig  `toml:"llm"`
	Vector    VectorConfig    `toml:"vector"`
	Storage   StorageConfig   `toml:"storage"`
}

// ChunkingConfig controls how extracted text is segmented.
type ChunkingConfig struct {
	MaxTokens     int `toml:"max_tokens"`
	OverlapTokens int `toml:"overlap_tokens"`
}

// RetrievalConfig controls similarity search.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`

	// ScoreThreshold drops hits below this similarity. Zero keeps all.
	ScoreThreshold float64 `toml:"score_threshold"`
}

// SynthesisConfig controls answer generation.
type SynthesisConfig struct {
	// ContextBudgetChars caps the total segment text passed to the LLM.
	ContextBudgetChars int `toml:"context_budget_chars"`
}

// IngestionConfig controls the indexing pipeline.
type IngestionConfig struct {
	// Concurrency is the number of parallel embedding workers.
	Concurrency int `toml:"concurrency"`

	// BatchSize is the number of segments embedded per request.
	BatchSize int `toml:"batch_size"`

	// RequestsPerSecond throttles calls to the embedding service.
	// Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	// Dimensions overrides the embedding vector size where the provider
	// supports it. Ignored for LLM providers.
	Dimensions int `toml:"dimensions"`
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	// Backend is "memory" or "qdrant".
	Backend string `toml:"backend"`

	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// StorageConfig configures the document store.
type StorageConfig struct {
	// DataDir is the directory holding the SQLite database.
	// Empty means ~/.veridoc/data.
	DataDir string `toml:"data_dir"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MaxTokens:     DefaultChunkMaxTokens,
			OverlapTokens: DefaultChunkOverlapTokens,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		Synthesis: SynthesisConfig{
			ContextBudgetChars: DefaultContextBudgetChars,
		},
		Ingestion: IngestionConfig{
			Concurrency:       DefaultConcurrency,
			BatchSize:         DefaultBatchSize,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Embedding: ProviderConfig{
			Provider: DefaultEmbeddingProvider,
		},
		LLM: ProviderConfig{
			Provider: DefaultLLMProvider,
		},
		Vector: VectorConfig{
			Backend: DefaultVectorBackend,
		},
	}
}

// Load reads configuration from configDir/config.toml, applying defaults
// for anything the file omits. If configDir is empty, ~/.veridoc is used.
// A missing file is not an error; the defaults are returned.
func Load(configDir string) (*Config, error) {
	path, err := resolvePath(configDir)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to configDir/config.toml, creating the
// directory if needed.
func Save(configDir string, cfg *Config) error {
	path, err := resolvePath(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions: the file may hold API keys.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("chunking.max_tokens must be positive, got %d", c.Chunking.MaxTokens)
	}
	if c.Chunking.OverlapTokens < 0 {
		return fmt.Errorf("chunking.overlap_tokens must not be negative, got %d", c.Chunking.OverlapTokens)
	}
	if c.Chunking.OverlapTokens >= c.Chunking.MaxTokens {
		return fmt.Errorf("chunking.overlap_tokens (%d) must be smaller than chunking.max_tokens (%d)",
			c.Chunking.OverlapTokens, c.Chunking.MaxTokens)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Synthesis.ContextBudgetChars <= 0 {
		return fmt.Errorf("synthesis.context_budget_chars must be positive, got %d", c.Synthesis.ContextBudgetChars)
	}
	if c.Ingestion.Concurrency <= 0 {
		return fmt.Errorf("ingestion.concurrency must be positive, got %d", c.Ingestion.Concurrency)
	}
	if c.Ingestion.BatchSize <= 0 {
		return fmt.Errorf("ingestion.batch_size must be positive, got %d", c.Ingestion.BatchSize)
	}
	return nil
}

// resolvePath returns the config file path for a config directory.
func resolvePath(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".veridoc")
	}
	return filepath.Join(configDir, "config.toml"), nil
}
