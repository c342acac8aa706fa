package domain

import "time"

// IngestionStatus tracks a document's progress through the ingestion
// pipeline. A document is only queryable once it reaches StatusIndexed.
type IngestionStatus string

const (
	// StatusPending indicates ingestion has started but not completed.
	StatusPending IngestionStatus = "pending"

	// StatusIndexed indicates every segment has been embedded and upserted.
	StatusIndexed IngestionStatus = "indexed"

	// StatusFailed indicates ingestion aborted; the document is not queryable.
	StatusFailed IngestionStatus = "failed"
)

// Valid reports whether the status is one of the known values.
func (s IngestionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusIndexed, StatusFailed:
		return true
	}
	return false
}

// Document represents an ingested document.
// Its identifier is derived from the file content, so re-ingesting the
// same bytes resolves to the same document.
type Document struct {
	// ID is the content-derived identifier ("doc_" + SHA-256 of the bytes).
	ID string

	// Title is the human-readable title, extracted from the content or
	// falling back to the filename.
	Title string

	// Filename is the name the document was uploaded under.
	Filename string

	// Pages is the total page count reported by the extractor.
	Pages int

	// Status is the current ingestion status.
	Status IngestionStatus

	// FailureStage names the pipeline stage that failed when Status is
	// StatusFailed ("extraction", "chunking" or "indexing").
	FailureStage string

	// CreatedAt is when ingestion started.
	CreatedAt time.Time

	// UpdatedAt is when the document record last changed.
	UpdatedAt time.Time
}

// Page is one page of extracted text. Pages with empty text are kept so
// page numbering stays accurate for citations.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted text of the page, possibly empty.
	Text string
}

// Segment is a bounded contiguous slice of a document's text, the atomic
// unit of indexing and retrieval. Segments are immutable once created and
// belong to exactly one document.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the ordinal position within the document, contiguous from 0.
	Index int

	// Text is the segment content.
	Text string

	// Pages lists the 1-based page numbers this segment overlaps,
	// determined by character offset.
	Pages []int

	// StartOffset and EndOffset delimit the segment within the
	// concatenated document text ([start, end) in bytes).
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation, populated during ingestion.
	Embedding []float32
}
