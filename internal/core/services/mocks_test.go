package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// ==================== Extractor mocks ====================

type mockExtractor struct {
	pages []domain.Page
	err   error
}

func (m *mockExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }

func (m *mockExtractor) Extract(context.Context, []byte) ([]domain.Page, error) {
	return m.pages, m.err
}

type mockRegistry struct {
	extractor driven.Extractor
	err       error
}

func (m *mockRegistry) ForMIMEType(string) (driven.Extractor, error) {
	return m.extractor, m.err
}

func plainMIME(string, []byte) string { return "text/plain" }

// ==================== Chunker mock ====================

type mockChunker struct {
	err error
}

// Chunk produces one segment per page.
func (m *mockChunker) Chunk(_ context.Context, documentID string, pages []domain.Page) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	segments := make([]domain.Segment, 0, len(pages))
	for i, page := range pages {
		segments = append(segments, domain.Segment{
			ID:         "seg-" + strings.Repeat("x", i+1),
			DocumentID: documentID,
			Index:      i,
			Text:       page.Text,
			Pages:      []int{page.Number},
		})
	}
	return segments, nil
}

// ==================== Embedding mock ====================

type mockEmbedder struct {
	mu         sync.Mutex
	batchCalls int
	embedCalls int
	failAfter  int // fail the Nth and later batch calls; 0 disables
	err        error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	calls := m.batchCalls
	m.mu.Unlock()

	if m.err != nil && (m.failAfter == 0 || calls >= m.failAfter) {
		return nil, m.err
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// ==================== Vector index mock ====================

type mockIndex struct {
	mu         sync.Mutex
	namespaces map[string]int
	upserts    map[string][]string
	deleted    []string

	hits      []driven.VectorHit
	queryErr  error
	upsertErr error
	createErr error
	lastK     int
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		namespaces: make(map[string]int),
		upserts:    make(map[string][]string),
	}
}

func (m *mockIndex) CreateNamespace(_ context.Context, namespace string, dimensions int) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespaces[namespace] = dimensions
	return nil
}

func (m *mockIndex) Upsert(_ context.Context, namespace, segmentID string, _ []float32, _ driven.SegmentMetadata) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts[namespace] = append(m.upserts[namespace], segmentID)
	return nil
}

func (m *mockIndex) Query(_ context.Context, _ string, _ []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	m.lastK = k
	m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *mockIndex) DeleteNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, namespace)
	delete(m.namespaces, namespace)
	delete(m.upserts, namespace)
	return nil
}

func (m *mockIndex) Close() error { return nil }

func (m *mockIndex) upsertCount(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts[namespace])
}

// ==================== Document store mock ====================

// mockDocStore wraps map storage and records the order of status
// transitions for barrier assertions.
type mockDocStore struct {
	mu          sync.Mutex
	documents   map[string]domain.Document
	segments    map[string][]domain.Segment
	transitions []domain.IngestionStatus

	saveErr      error
	setStatusErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		documents: make(map[string]domain.Document),
		segments:  make(map[string][]domain.Segment),
	}
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = *doc
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockDocStore) SetStatus(_ context.Context, id string, status domain.IngestionStatus, failureStage string) error {
	if m.setStatusErr != nil {
		return m.setStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.FailureStage = failureStage
	m.documents[id] = doc
	m.transitions = append(m.transitions, status)
	return nil
}

func (m *mockDocStore) SaveSegments(_ context.Context, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[segments[0].DocumentID] = segments
	return nil
}

func (m *mockDocStore) GetSegments(_ context.Context, documentID string) ([]domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segments[documentID], nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	delete(m.segments, id)
	return nil
}

func (m *mockDocStore) ListDocuments(context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.Document, 0, len(m.documents))
	for id := range m.documents {
		docs = append(docs, m.documents[id])
	}
	return docs, nil
}

func (m *mockDocStore) Close() error { return nil }

// ==================== LLM mock ====================

type mockLLM struct {
	mu       sync.Mutex
	calls    int
	prompts  []string
	response string
	err      error
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }
