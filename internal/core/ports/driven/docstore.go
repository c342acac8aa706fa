package driven

import (
	"context"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// DocumentStore persists document and segment records. It backs the
// session manager; storage is injected so the hosting process decides
// between in-memory and SQLite-backed sessions.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// SetStatus updates a document's ingestion status. The failureStage
	// is recorded when status is StatusFailed and ignored otherwise.
	SetStatus(ctx context.Context, id string, status domain.IngestionStatus, failureStage string) error

	// SaveSegments stores the full ordered segment sequence for a document.
	SaveSegments(ctx context.Context, segments []domain.Segment) error

	// GetSegments retrieves all segments for a document ordered by index.
	GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// DeleteDocument removes a document and its segments.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all document records.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}
