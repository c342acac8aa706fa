package driving

import (
	"context"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// DocumentQA is the external surface of the core: ingest a document, ask
// questions against it, and poll ingestion progress.
type DocumentQA interface {
	// Ingest runs the full ingestion pipeline (extract, chunk, embed,
	// index) and returns the document record. On failure the returned
	// document, if any, carries StatusFailed and the failing stage;
	// a partially ingested document is never left queryable.
	Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error)

	// Ask answers a question using only the document's content.
	// topK <= 0 selects the configured default. Fails with
	// domain.ErrDocumentNotReady when the document is not indexed.
	Ask(ctx context.Context, documentID, question string, topK int) (*domain.Answer, error)

	// Status reports a document's ingestion status.
	Status(ctx context.Context, documentID string) (domain.IngestionStatus, error)

	// Delete removes a document: its namespace in the vector index
	// (best effort) and its document/segment records.
	Delete(ctx context.Context, documentID string) error

	// List returns all known documents.
	List(ctx context.Context) ([]domain.Document, error)
}
