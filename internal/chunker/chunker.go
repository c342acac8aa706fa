// Package chunker provides a sliding token-window chunking processor
// with configurable overlap and page attribution.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultMaxTokens is the default token budget per segment.
const DefaultMaxTokens = 1000

// DefaultOverlapTokens is the default overlap between consecutive segments.
const DefaultOverlapTokens = 200

// PageSeparator joins page texts into the single document text the
// chunker operates on. Offsets are defined against this joined text.
const PageSeparator = "\n"

// Chunker splits extracted pages into overlapping bounded-size segments.
// Tokens are approximated as runes; no model tokeniser is required, and a
// run of text with no natural break is simply cut at the budget rather
// than rejected. Consecutive segments share a trailing/leading window so
// content split across a boundary is still answerable from a neighbour.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the token budget per segment.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap between consecutive segments.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens:     DefaultMaxTokens,
		overlapTokens: DefaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk produces the ordered segment sequence for a document. Segment
// indices are contiguous from zero and the segments tile the joined page
// text exactly, so removing each segment's leading overlap reconstructs
// the extracted text.
//
// It fails wrapping domain.ErrChunking only when the configured token
// budget does not exceed the overlap; content never causes failure.
func (c *Chunker) Chunk(_ context.Context, documentID string, pages []domain.Page) ([]domain.Segment, error) {
	if c.maxTokens <= c.overlapTokens {
		return nil, fmt.Errorf("%w: max tokens (%d) must exceed overlap tokens (%d)",
			domain.ErrChunking, c.maxTokens, c.overlapTokens)
	}

	text, bounds := joinPages(pages)
	if text == "" {
		return nil, nil
	}

	// Byte offset of every rune, plus a sentinel for the text end, so
	// windows can be sliced without re-decoding.
	offsets := runeOffsets(text)
	runes := len(offsets) - 1

	step := c.maxTokens - c.overlapTokens
	segments := make([]domain.Segment, 0, runes/step+1)

	index := 0
	for i := 0; i < runes; i += step {
		j := i + c.maxTokens
		if j > runes {
			j = runes
		}

		start := offsets[i]
		end := offsets[j]
		segments = append(segments, domain.Segment{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			Index:       index,
			Text:        text[start:end],
			Pages:       pagesFor(start, end, bounds),
			StartOffset: start,
			EndOffset:   end,
		})
		index++

		if j == runes {
			break
		}
	}

	return segments, nil
}

// pageBound records where a page's text sits within the joined text.
type pageBound struct {
	number int
	start  int
	end    int
}

// joinPages concatenates page texts with PageSeparator, recording each
// page's offset range for later attribution. Empty pages are kept so
// page numbering stays accurate.
func joinPages(pages []domain.Page) (string, []pageBound) {
	var b strings.Builder
	bounds := make([]pageBound, 0, len(pages))
	for i, page := range pages {
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		start := b.Len()
		b.WriteString(page.Text)
		bounds = append(bounds, pageBound{number: page.Number, start: start, end: b.Len()})
	}
	return b.String(), bounds
}

// pagesFor returns the page numbers whose text overlaps [start, end).
func pagesFor(start, end int, bounds []pageBound) []int {
	var pages []int
	for _, pb := range bounds {
		if start < pb.end && end > pb.start {
			pages = append(pages, pb.number)
		}
	}
	return pages
}

// runeOffsets returns the byte offset of each rune in text, with one
// trailing entry holding len(text).
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return offsets
}
