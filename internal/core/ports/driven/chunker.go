package driven

import (
	"context"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// Chunker splits extracted pages into overlapping, bounded-size segments.
// Segment indices within a document are contiguous starting at zero, and
// consecutive segments share an overlap window so context survives
// arbitrary split points.
type Chunker interface {
	// Chunk produces the ordered segment sequence for a document.
	// Fails wrapping domain.ErrChunking only on invalid configuration.
	Chunk(ctx context.Context, documentID string, pages []domain.Page) ([]domain.Segment, error)
}
