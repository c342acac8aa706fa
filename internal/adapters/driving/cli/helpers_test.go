package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/veridoc/internal/core/domain"
)

// mockQA is a canned document QA service for command tests.
type mockQA struct {
	ingestDoc *domain.Document
	ingestErr error
	answer    *domain.Answer
	askErr    error
	status    domain.IngestionStatus
	statusErr error
	deleteErr error
	docs      []domain.Document
	listErr   error

	lastDocID    string
	lastQuestion string
	lastTopK     int
}

func (m *mockQA) Ingest(_ context.Context, _ []byte, _ string) (*domain.Document, error) {
	return m.ingestDoc, m.ingestErr
}

func (m *mockQA) Ask(_ context.Context, documentID, question string, topK int) (*domain.Answer, error) {
	m.lastDocID = documentID
	m.lastQuestion = question
	m.lastTopK = topK
	if m.askErr != nil {
		return nil, m.askErr
	}
	return m.answer, nil
}

func (m *mockQA) Status(_ context.Context, documentID string) (domain.IngestionStatus, error) {
	m.lastDocID = documentID
	return m.status, m.statusErr
}

func (m *mockQA) Delete(_ context.Context, documentID string) error {
	m.lastDocID = documentID
	return m.deleteErr
}

func (m *mockQA) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.listErr
}

// setupTestServices installs a mock QA service with canned data and
// returns a cleanup restoring the previous one.
func setupTestServices() (*mockQA, func()) {
	now := time.Now()
	mock := &mockQA{
		ingestDoc: &domain.Document{
			ID:        "doc_abc123",
			Title:     "Test Document",
			Filename:  "test.pdf",
			Pages:     3,
			Status:    domain.StatusIndexed,
			CreatedAt: now,
			UpdatedAt: now,
		},
		answer: &domain.Answer{
			Text: "The warranty lasts two years.",
			Citations: []domain.Citation{
				{SegmentID: "doc_abc123_0000", SegmentIndex: 0, Pages: []int{2}},
				{SegmentID: "doc_abc123_0001", SegmentIndex: 1, Pages: []int{2, 3}},
			},
			Grounded: true,
		},
		status: domain.StatusIndexed,
		docs: []domain.Document{
			{
				ID:        "doc_abc123",
				Title:     "Test Document",
				Filename:  "test.pdf",
				Pages:     3,
				Status:    domain.StatusIndexed,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}

	previous := qaService
	SetQAService(mock)
	return mock, func() {
		qaService = previous
	}
}
