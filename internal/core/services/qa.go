package services

import (
	"context"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driving"
	"github.com/custodia-labs/veridoc/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.DocumentQA = (*QAService)(nil)

// QAService is the facade over the pipeline services, implementing the
// external document question-answering surface.
type QAService struct {
	ingestion   *IngestionService
	session     *SessionService
	retriever   *RetrieverService
	synthesizer *SynthesizerService
}

// NewQAService creates the facade from its component services.
func NewQAService(
	ingestion *IngestionService,
	session *SessionService,
	retriever *RetrieverService,
	synthesizer *SynthesizerService,
) *QAService {
	return &QAService{
		ingestion:   ingestion,
		session:     session,
		retriever:   retriever,
		synthesizer: synthesizer,
	}
}

// Ingest runs the full ingestion pipeline for an uploaded document.
func (s *QAService) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	return s.ingestion.Ingest(ctx, data, filename)
}

// Ask answers a question using only the document's indexed content. The
// readiness gate runs first; retrieval never touches the index for a
// document that is not fully indexed.
func (s *QAService) Ask(ctx context.Context, documentID, question string, topK int) (*domain.Answer, error) {
	if _, err := s.session.EnsureReady(ctx, documentID); err != nil {
		return nil, err
	}

	logger.Section("Question Answering")
	retrieved, err := s.retriever.Retrieve(ctx, documentID, question, topK)
	if err != nil {
		return nil, err
	}

	return s.synthesizer.Synthesize(ctx, question, retrieved)
}

// Status reports a document's ingestion status.
func (s *QAService) Status(ctx context.Context, documentID string) (domain.IngestionStatus, error) {
	return s.session.Status(ctx, documentID)
}

// Delete removes a document and its vectors.
func (s *QAService) Delete(ctx context.Context, documentID string) error {
	return s.session.Delete(ctx, documentID)
}

// List returns all known documents.
func (s *QAService) List(ctx context.Context) ([]domain.Document, error) {
	return s.session.List(ctx)
}
