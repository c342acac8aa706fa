package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc/internal/logger"
)

// DefaultTopK is the number of segments retrieved when the caller does
// not specify one.
const DefaultTopK = 4

// RetrieverConfig tunes retrieval.
type RetrieverConfig struct {
	// TopK is the number of segments retrieved when the caller does not
	// specify one. Zero falls back to DefaultTopK.
	TopK int

	// ScoreThreshold drops hits scoring below it. Zero keeps all hits.
	ScoreThreshold float64
}

// RetrieverService finds the segments most similar to a question within
// one document's namespace.
type RetrieverService struct {
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex

	defaultTopK    int
	scoreThreshold float64
}

// NewRetrieverService creates a new retriever service.
func NewRetrieverService(embedder driven.EmbeddingService, vectorIndex driven.VectorIndex, cfg RetrieverConfig) *RetrieverService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &RetrieverService{
		embedder:       embedder,
		vectorIndex:    vectorIndex,
		defaultTopK:    cfg.TopK,
		scoreThreshold: cfg.ScoreThreshold,
	}
}

// Retrieve embeds the question and queries the document's namespace for
// the top-k most similar segments, ordered by score descending. An empty
// result after threshold filtering is a valid outcome, distinct from a
// failed query.
func (s *RetrieverService) Retrieve(ctx context.Context, documentID, question string, topK int) ([]domain.RetrievedSegment, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	logger.Debug("Retrieving top %d segments for %q in %s", topK, question, documentID)

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %w", domain.ErrRetrieval, err)
	}

	hits, err := s.vectorIndex.Query(ctx, documentID, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	retrieved := make([]domain.RetrievedSegment, 0, len(hits))
	for _, hit := range hits {
		if s.scoreThreshold > 0 && hit.Similarity < s.scoreThreshold {
			continue
		}
		retrieved = append(retrieved, domain.RetrievedSegment{
			Segment: domain.Segment{
				ID:         hit.SegmentID,
				DocumentID: hit.Metadata.DocumentID,
				Index:      hit.Metadata.SegmentIndex,
				Text:       hit.Metadata.Text,
				Pages:      hit.Metadata.Pages,
			},
			Score: hit.Similarity,
		})
	}

	logger.Debug("Retrieved %d segments (%d hits before threshold)", len(retrieved), len(hits))
	return retrieved, nil
}
