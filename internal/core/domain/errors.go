package domain

import "errors"

// Domain errors represent failures of specific pipeline stages.
// Infrastructure adapters wrap these so callers can distinguish what
// broke without depending on any provider's error shapes.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion-path errors.

	// ErrExtraction indicates the document container was unreadable or
	// contained no extractable text.
	ErrExtraction = errors.New("extraction failed")

	// ErrChunking indicates invalid chunker configuration
	// (max tokens <= overlap tokens). This is a config error, not a data error.
	ErrChunking = errors.New("chunking failed")

	// ErrEmbedding indicates the embedding provider failed
	// (timeout, rate limit, oversize input).
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite indicates the vector index rejected an upsert.
	ErrIndexWrite = errors.New("index write failed")

	// Query-path errors.

	// ErrIndexQuery indicates a vector index query failed, including the
	// case where the namespace does not exist or holds no entries.
	// This is distinct from a successful query with zero matches.
	ErrIndexQuery = errors.New("index query failed")

	// ErrRetrieval wraps an embedding or index failure during retrieval.
	// An empty result set is never substituted for this error.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrSynthesis indicates the generative model failed to produce an answer.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrDocumentNotReady indicates a query against a document whose
	// status is not indexed (still pending, failed, or unknown).
	ErrDocumentNotReady = errors.New("document not ready")
)
