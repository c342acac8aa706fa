// Package app assembles the application from its configuration: it
// picks the providers, builds the adapters and wires the core services
// together.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veridoc/internal/adapters/driven/config/file"
	ollamaembed "github.com/custodia-labs/veridoc/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/veridoc/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/veridoc/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/veridoc/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/veridoc/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/custodia-labs/veridoc/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/veridoc/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/veridoc/internal/chunker"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc/internal/core/ports/driving"
	"github.com/custodia-labs/veridoc/internal/core/services"
	"github.com/custodia-labs/veridoc/internal/extractors"
	"github.com/custodia-labs/veridoc/internal/extractors/pdf"
	"github.com/custodia-labs/veridoc/internal/extractors/plaintext"
	"github.com/custodia-labs/veridoc/internal/logger"
	"github.com/custodia-labs/veridoc/internal/ratelimit"
	"github.com/custodia-labs/veridoc/internal/retry"
)

// App holds the wired application and the resources it owns.
type App struct {
	QA driving.DocumentQA

	closers []func() error
}

// Build constructs the application from the given configuration.
func Build(cfg *file.Config) (*App, error) {
	a := &App{}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, embedder.Close)

	llm, err := buildLLM(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, llm.Close)

	vectorIndex, err := buildVectorIndex(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, vectorIndex.Close)

	docStore, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	a.closers = append(a.closers, docStore.Close)
	logger.Debug("Document store at %s", docStore.Path())

	// Embedding and index calls retry transient failures. LLM calls
	// do not.
	policy := retry.DefaultPolicy()
	embedder = retry.WrapEmbedding(embedder, policy)
	vectorIndex = retry.WrapIndex(vectorIndex, policy)

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.Ingestion.RequestsPerSecond,
	})

	registry := extractors.NewRegistry(pdf.New(), plaintext.New())
	chunk := chunker.New(
		chunker.WithMaxTokens(cfg.Chunking.MaxTokens),
		chunker.WithOverlapTokens(cfg.Chunking.OverlapTokens),
	)

	ingestion := services.NewIngestionService(
		registry,
		extractors.DetectMIMEType,
		chunk,
		embedder,
		vectorIndex,
		docStore,
		limiter,
		services.IngestionConfig{
			Concurrency: cfg.Ingestion.Concurrency,
			BatchSize:   cfg.Ingestion.BatchSize,
		},
	)
	session := services.NewSessionService(docStore, vectorIndex)

	// The in-memory index starts empty on every run; replay the stored
	// segments so previously ingested documents stay queryable.
	if cfg.Vector.Backend == "memory" || cfg.Vector.Backend == "" {
		if err := session.Rehydrate(context.Background()); err != nil {
			a.Close()
			return nil, fmt.Errorf("rebuilding vector index: %w", err)
		}
	}
	retriever := services.NewRetrieverService(embedder, vectorIndex, services.RetrieverConfig{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
	})
	synthesizer := services.NewSynthesizerService(llm, cfg.Synthesis.ContextBudgetChars)

	a.QA = services.NewQAService(ingestion, session, retriever, synthesizer)
	return a, nil
}

// Close releases all resources in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Close error: %v", err)
		}
	}
	a.closers = nil
}

func buildEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "ollama", "":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

func buildLLM(cfg *file.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case "ollama", "":
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}), nil
	case "openai":
		return openaillm.NewLLMService(openaillm.LLMConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

func buildVectorIndex(cfg *file.Config) (driven.VectorIndex, error) {
	switch cfg.Vector.Backend {
	case "memory", "":
		return vectormemory.NewIndex(), nil
	case "qdrant":
		return qdrant.NewIndex(qdrant.Config{
			BaseURL: cfg.Vector.BaseURL,
			APIKey:  cfg.Vector.APIKey,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", cfg.Vector.Backend)
	}
}
