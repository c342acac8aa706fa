package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc/internal/logger"
)

// SessionService tracks document lifecycle: which documents exist, which
// are queryable, and tearing a document down. It is the gate in front of
// retrieval; a document that is not indexed is never queried.
type SessionService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
}

// NewSessionService creates a new session service.
func NewSessionService(docStore driven.DocumentStore, vectorIndex driven.VectorIndex) *SessionService {
	return &SessionService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
	}
}

// EnsureReady returns the document if it exists and is fully indexed.
// Fails with domain.ErrNotFound for unknown documents and
// domain.ErrDocumentNotReady for pending or failed ones.
func (s *SessionService) EnsureReady(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusIndexed {
		return nil, fmt.Errorf("%w: document %s is %s", domain.ErrDocumentNotReady, documentID, doc.Status)
	}
	return doc, nil
}

// Status reports a document's ingestion status.
func (s *SessionService) Status(ctx context.Context, documentID string) (domain.IngestionStatus, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}

// Delete removes a document's vectors and records. A failed namespace
// delete is logged, not fatal; records are removed last.
func (s *SessionService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.vectorIndex.DeleteNamespace(ctx, documentID); err != nil {
		logger.Warn("Deleting namespace %s: %v", documentID, err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("deleting document: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

// List returns all known documents.
func (s *SessionService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Rehydrate replays stored segments into the vector index for every
// indexed document. The document store keeps each segment's embedding,
// so an index that starts empty, like the in-memory backend does on
// every run, can be rebuilt without re-embedding anything.
func (s *SessionService) Rehydrate(ctx context.Context) error {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	for _, doc := range docs {
		if doc.Status != domain.StatusIndexed {
			continue
		}

		segments, err := s.docStore.GetSegments(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("loading segments for %s: %w", doc.ID, err)
		}
		if len(segments) == 0 {
			continue
		}

		if err := s.vectorIndex.CreateNamespace(ctx, doc.ID, len(segments[0].Embedding)); err != nil {
			return fmt.Errorf("recreating namespace %s: %w", doc.ID, err)
		}
		for _, seg := range segments {
			meta := driven.SegmentMetadata{
				DocumentID:   seg.DocumentID,
				SegmentIndex: seg.Index,
				Pages:        seg.Pages,
				Text:         seg.Text,
			}
			if err := s.vectorIndex.Upsert(ctx, doc.ID, seg.ID, seg.Embedding, meta); err != nil {
				return fmt.Errorf("restoring segment %s: %w", seg.ID, err)
			}
		}
		logger.Debug("Rehydrated %d segments for document %s", len(segments), doc.ID)
	}
	return nil
}
