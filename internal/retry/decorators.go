package retry

import (
	"context"
	"errors"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.VectorIndex      = (*VectorIndex)(nil)
)

// EmbeddingService wraps an embedding service with retry on transient
// failures. Ping and Close are passed through untouched.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	policy Policy
}

// WrapEmbedding decorates an embedding service with the given policy.
func WrapEmbedding(inner driven.EmbeddingService, policy Policy) *EmbeddingService {
	return &EmbeddingService{inner: inner, policy: policy}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		out, err = s.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		out, err = s.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping validates the service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases resources.
func (s *EmbeddingService) Close() error { return s.inner.Close() }

// VectorIndex wraps a vector index with retry on write and query
// operations.
type VectorIndex struct {
	inner  driven.VectorIndex
	policy Policy
}

// WrapIndex decorates a vector index with the given policy.
func WrapIndex(inner driven.VectorIndex, policy Policy) *VectorIndex {
	return &VectorIndex{inner: inner, policy: policy}
}

// CreateNamespace creates a namespace sized for the given dimensions.
func (x *VectorIndex) CreateNamespace(ctx context.Context, namespace string, dimensions int) error {
	return Do(ctx, x.policy, func(ctx context.Context) error {
		return x.inner.CreateNamespace(ctx, namespace, dimensions)
	})
}

// Upsert inserts or overwrites the vector for a segment ID. Safe to
// retry because upserts are idempotent per segment ID.
func (x *VectorIndex) Upsert(ctx context.Context, namespace, segmentID string, vector []float32, meta driven.SegmentMetadata) error {
	return Do(ctx, x.policy, func(ctx context.Context) error {
		return x.inner.Upsert(ctx, namespace, segmentID, vector, meta)
	})
}

// Query returns up to k hits ordered by similarity descending. Query
// failures the index itself reports, like an unknown namespace or a
// dimension mismatch, do not heal on retry and fail immediately.
func (x *VectorIndex) Query(ctx context.Context, namespace string, vector []float32, k int) ([]driven.VectorHit, error) {
	var hits []driven.VectorHit
	err := Do(ctx, x.policy, func(ctx context.Context) error {
		var err error
		hits, err = x.inner.Query(ctx, namespace, vector, k)
		if errors.Is(err, domain.ErrIndexQuery) {
			return Permanent(err)
		}
		return err
	})
	return hits, err
}

// DeleteNamespace drops a namespace and all of its vectors.
func (x *VectorIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	return Do(ctx, x.policy, func(ctx context.Context) error {
		return x.inner.DeleteNamespace(ctx, namespace)
	})
}

// Close releases resources.
func (x *VectorIndex) Close() error { return x.inner.Close() }
