package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

func testHits() []driven.VectorHit {
	return []driven.VectorHit{
		{
			SegmentID:  "seg-a",
			Similarity: 0.91,
			Metadata: driven.SegmentMetadata{
				DocumentID:   "doc_1",
				SegmentIndex: 2,
				Pages:        []int{3},
				Text:         "most relevant",
			},
		},
		{
			SegmentID:  "seg-b",
			Similarity: 0.42,
			Metadata: driven.SegmentMetadata{
				DocumentID:   "doc_1",
				SegmentIndex: 0,
				Pages:        []int{1},
				Text:         "less relevant",
			},
		},
	}
}

func TestRetrieve_MapsHits(t *testing.T) {
	index := newMockIndex()
	index.hits = testHits()
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{})

	retrieved, err := svc.Retrieve(context.Background(), "doc_1", "what is relevant?", 4)
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, "seg-a", retrieved[0].Segment.ID)
	assert.Equal(t, 0.91, retrieved[0].Score)
	assert.Equal(t, 2, retrieved[0].Segment.Index)
	assert.Equal(t, []int{3}, retrieved[0].Segment.Pages)
	assert.Equal(t, "most relevant", retrieved[0].Segment.Text)

	assert.Equal(t, "seg-b", retrieved[1].Segment.ID)
}

func TestRetrieve_EmptyQuestion(t *testing.T) {
	svc := NewRetrieverService(&mockEmbedder{}, newMockIndex(), RetrieverConfig{})

	_, err := svc.Retrieve(context.Background(), "doc_1", "   ", 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetrieve_EmbeddingFailureWrapsRetrieval(t *testing.T) {
	embedder := &mockEmbedder{err: errors.New("provider down")}
	svc := NewRetrieverService(embedder, newMockIndex(), RetrieverConfig{})

	_, err := svc.Retrieve(context.Background(), "doc_1", "question", 4)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
}

func TestRetrieve_QueryFailureWrapsRetrieval(t *testing.T) {
	index := newMockIndex()
	index.queryErr = domain.ErrIndexQuery
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{})

	_, err := svc.Retrieve(context.Background(), "doc_1", "question", 4)
	assert.ErrorIs(t, err, domain.ErrRetrieval)
	// The underlying index error stays visible through the wrap.
	assert.ErrorIs(t, err, domain.ErrIndexQuery)
}

func TestRetrieve_EmptyResultIsNotAnError(t *testing.T) {
	index := newMockIndex()
	index.hits = nil
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{})

	retrieved, err := svc.Retrieve(context.Background(), "doc_1", "question", 4)
	require.NoError(t, err)
	assert.Empty(t, retrieved)
}

func TestRetrieve_ScoreThresholdFilters(t *testing.T) {
	index := newMockIndex()
	index.hits = testHits()
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{ScoreThreshold: 0.5})

	retrieved, err := svc.Retrieve(context.Background(), "doc_1", "question", 4)
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, "seg-a", retrieved[0].Segment.ID)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	index := newMockIndex()
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{})

	_, err := svc.Retrieve(context.Background(), "doc_1", "question", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, index.lastK)
}

func TestRetrieve_ConfiguredTopK(t *testing.T) {
	index := newMockIndex()
	svc := NewRetrieverService(&mockEmbedder{}, index, RetrieverConfig{TopK: 8})

	_, err := svc.Retrieve(context.Background(), "doc_1", "question", 0)
	require.NoError(t, err)
	assert.Equal(t, 8, index.lastK)

	// An explicit topK from the caller still wins.
	_, err = svc.Retrieve(context.Background(), "doc_1", "question", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, index.lastK)
}
