// Package memory provides an in-memory vector index with per-document
// namespaces and cosine similarity search. It is the default backend and
// the reference implementation for the VectorIndex contract.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one stored vector with its payload.
type entry struct {
	segmentID string
	vector    []float32
	meta      driven.SegmentMetadata
}

// namespace holds one document's vectors in insertion order, so equal
// similarity scores resolve to a stable native ordering.
type namespace struct {
	dimensions int
	order      []string
	entries    map[string]*entry
}

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{namespaces: make(map[string]*namespace)}
}

// CreateNamespace prepares an empty namespace for vectors of the given
// dimension. Re-creating an existing namespace with the same dimension
// is a no-op.
func (x *Index) CreateNamespace(_ context.Context, name string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexWrite, dimensions)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if ns, ok := x.namespaces[name]; ok {
		if ns.dimensions != dimensions {
			return fmt.Errorf("%w: namespace %q exists with dimensions %d, requested %d",
				domain.ErrIndexWrite, name, ns.dimensions, dimensions)
		}
		return nil
	}

	x.namespaces[name] = &namespace{
		dimensions: dimensions,
		entries:    make(map[string]*entry),
	}
	return nil
}

// Upsert inserts or overwrites the vector for a segment ID.
// Overwriting keeps the entry's original position in the native order.
func (x *Index) Upsert(_ context.Context, name, segmentID string, vector []float32, meta driven.SegmentMetadata) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns, ok := x.namespaces[name]
	if !ok {
		return fmt.Errorf("%w: namespace %q does not exist", domain.ErrIndexWrite, name)
	}
	if len(vector) != ns.dimensions {
		return fmt.Errorf("%w: vector has %d dimensions, namespace %q expects %d",
			domain.ErrIndexWrite, len(vector), name, ns.dimensions)
	}

	if _, exists := ns.entries[segmentID]; !exists {
		ns.order = append(ns.order, segmentID)
	}
	stored := make([]float32, len(vector))
	copy(stored, vector)
	ns.entries[segmentID] = &entry{segmentID: segmentID, vector: stored, meta: meta}
	return nil
}

// Query returns up to k hits ordered by cosine similarity descending.
// A namespace that does not exist or holds no entries is an error,
// distinct from a query that simply matches nothing.
func (x *Index) Query(_ context.Context, name string, vector []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrIndexQuery)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	ns, ok := x.namespaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: namespace %q does not exist", domain.ErrIndexQuery, name)
	}
	if len(ns.entries) == 0 {
		return nil, fmt.Errorf("%w: namespace %q holds no entries", domain.ErrIndexQuery, name)
	}
	if len(vector) != ns.dimensions {
		return nil, fmt.Errorf("%w: vector has %d dimensions, namespace %q expects %d",
			domain.ErrIndexQuery, len(vector), name, ns.dimensions)
	}

	hits := make([]driven.VectorHit, 0, len(ns.order))
	for _, id := range ns.order {
		e := ns.entries[id]
		hits = append(hits, driven.VectorHit{
			SegmentID:  e.segmentID,
			Similarity: cosineSimilarity(vector, e.vector),
			Metadata:   e.meta,
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteNamespace removes a namespace and all its vectors.
// Deleting an unknown namespace is a no-op.
func (x *Index) DeleteNamespace(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.namespaces, name)
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.namespaces = make(map[string]*namespace)
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
