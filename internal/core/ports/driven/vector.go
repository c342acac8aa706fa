package driven

import "context"

// VectorIndex stores (vector, metadata) tuples in per-document namespaces
// and answers k-nearest-neighbour queries by cosine similarity (or an
// ordering monotonic with it). A namespace isolates one document's
// segments from every other document's.
type VectorIndex interface {
	// CreateNamespace prepares an empty namespace for vectors of the
	// given dimension. Creating an existing namespace is a no-op when
	// the dimension matches.
	CreateNamespace(ctx context.Context, namespace string, dimensions int) error

	// Upsert inserts or overwrites the vector for a segment ID.
	// Re-upserting the same ID never duplicates the entry.
	// Fails wrapping domain.ErrIndexWrite on backend unavailability.
	Upsert(ctx context.Context, namespace string, segmentID string, vector []float32, meta SegmentMetadata) error

	// Query returns up to k hits ordered by similarity descending.
	// Equal scores preserve the index's native return order.
	// Fails wrapping domain.ErrIndexQuery when the namespace does not
	// exist or holds zero entries, so callers can tell "not indexed yet"
	// from "no relevant segments".
	Query(ctx context.Context, namespace string, vector []float32, k int) ([]VectorHit, error)

	// DeleteNamespace removes a namespace and all its vectors.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Close releases resources.
	Close() error
}

// SegmentMetadata is the payload stored alongside a vector, sufficient to
// rebuild a citation without a second lookup.
type SegmentMetadata struct {
	// DocumentID is the owning document.
	DocumentID string

	// SegmentIndex is the segment's ordinal position in the document.
	SegmentIndex int

	// Pages lists the 1-based page numbers the segment spans.
	Pages []int

	// Text is the segment content.
	Text string
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// SegmentID is the matched segment.
	SegmentID string

	// Similarity is the cosine similarity score.
	Similarity float64

	// Metadata is the payload stored at upsert time.
	Metadata SegmentMetadata
}
