package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc/internal/logger"
	"github.com/custodia-labs/veridoc/internal/ratelimit"
)

// Failure stage labels recorded on documents that fail ingestion.
const (
	StageExtraction = "extraction"
	StageChunking   = "chunking"
	StageIndexing   = "indexing"
)

// Default ingestion pipeline settings.
const (
	DefaultConcurrency = 4
	DefaultBatchSize   = 16
)

// IngestionConfig controls the parallel embed-and-upsert phase.
type IngestionConfig struct {
	// Concurrency is the number of parallel workers.
	Concurrency int

	// BatchSize is the number of segments embedded per provider request.
	BatchSize int
}

// IngestionService runs the full ingestion pipeline: extract pages,
// chunk them into segments, embed each segment and upsert it into the
// document's namespace in the vector index. A document only becomes
// queryable after every segment is indexed.
type IngestionService struct {
	extractors  driven.ExtractorRegistry
	detectMIME  func(filename string, data []byte) string
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex
	docStore    driven.DocumentStore
	limiter     *ratelimit.Limiter

	concurrency int
	batchSize   int
}

// NewIngestionService creates a new ingestion service. detectMIME maps an
// uploaded file to a MIME type; limiter may be nil to disable throttling.
func NewIngestionService(
	extractors driven.ExtractorRegistry,
	detectMIME func(filename string, data []byte) string,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
	limiter *ratelimit.Limiter,
	cfg IngestionConfig,
) *IngestionService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &IngestionService{
		extractors:  extractors,
		detectMIME:  detectMIME,
		chunker:     chunker,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		docStore:    docStore,
		limiter:     limiter,
		concurrency: cfg.Concurrency,
		batchSize:   cfg.BatchSize,
	}
}

// DocumentID derives the content-addressed identifier for a document.
func DocumentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "doc_" + hex.EncodeToString(sum[:])
}

// Ingest runs the pipeline for one document. Re-ingesting bytes that are
// already indexed is a no-op returning the existing record.
func (s *IngestionService) Ingest(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}

	docID := DocumentID(data)
	logger.Section("Document Ingestion")
	logger.Debug("Document ID: %s (%d bytes, %q)", docID, len(data), filename)

	if existing, err := s.docStore.GetDocument(ctx, docID); err == nil {
		if existing.Status == domain.StatusIndexed {
			logger.Info("Document already indexed, skipping: %s", docID)
			return existing, nil
		}
		logger.Debug("Re-ingesting document in status %q", existing.Status)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up document: %w", err)
	}

	doc := &domain.Document{
		ID:       docID,
		Title:    titleFromFilename(filename),
		Filename: filename,
		Status:   domain.StatusPending,
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	// Stage 1: extraction.
	pages, err := s.extract(ctx, data, filename)
	if err != nil {
		return s.fail(ctx, doc, StageExtraction, err)
	}
	doc.Pages = len(pages)
	logger.Info("Extracted %d pages", len(pages))

	// Stage 2: chunking.
	segments, err := s.chunker.Chunk(ctx, docID, pages)
	if err != nil {
		return s.fail(ctx, doc, StageChunking, err)
	}
	if len(segments) == 0 {
		return s.fail(ctx, doc, StageChunking,
			fmt.Errorf("%w: document produced no segments", domain.ErrChunking))
	}
	logger.Info("Chunked into %d segments", len(segments))

	// Stage 3: embed and index. The document stays pending until every
	// segment is upserted; a partial index is torn down on failure.
	if err := s.indexSegments(ctx, docID, segments); err != nil {
		if derr := s.vectorIndex.DeleteNamespace(ctx, docID); derr != nil {
			logger.Warn("Cleanup of namespace %s failed: %v", docID, derr)
		}
		return s.fail(ctx, doc, StageIndexing, err)
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return s.fail(ctx, doc, StageIndexing, fmt.Errorf("saving document: %w", err))
	}
	if err := s.docStore.SaveSegments(ctx, segments); err != nil {
		return s.fail(ctx, doc, StageIndexing, fmt.Errorf("saving segments: %w", err))
	}
	if err := s.docStore.SetStatus(ctx, docID, domain.StatusIndexed, ""); err != nil {
		return s.fail(ctx, doc, StageIndexing, fmt.Errorf("marking indexed: %w", err))
	}

	doc.Status = domain.StatusIndexed
	doc.FailureStage = ""
	logger.Info("Document indexed: %s", docID)
	return doc, nil
}

// extract selects an extractor by MIME type and runs it.
func (s *IngestionService) extract(ctx context.Context, data []byte, filename string) ([]domain.Page, error) {
	mimeType := s.detectMIME(filename, data)
	logger.Debug("Detected MIME type: %s", mimeType)

	extractor, err := s.extractors.ForMIMEType(mimeType)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, data)
}

// indexSegments embeds segments in batches across a bounded worker pool
// and upserts each vector. It returns only after every worker finishes;
// the first error cancels the remaining work.
func (s *IngestionService) indexSegments(ctx context.Context, docID string, segments []domain.Segment) error {
	dims := s.embedder.Dimensions()
	if err := s.vectorIndex.CreateNamespace(ctx, docID, dims); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan []int)
	errCh := make(chan error, s.concurrency)

	var wg sync.WaitGroup
	for range s.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				if err := s.processBatch(ctx, docID, segments, batch); err != nil {
					errCh <- err
					cancel()
					return
				}
			}
		}()
	}

	// Feed batch index ranges to the workers.
	feed := func() {
		defer close(batches)
		for start := 0; start < len(segments); start += s.batchSize {
			end := min(start+s.batchSize, len(segments))
			idxs := make([]int, 0, end-start)
			for i := start; i < end; i++ {
				idxs = append(idxs, i)
			}
			select {
			case batches <- idxs:
			case <-ctx.Done():
				return
			}
		}
	}
	feed()

	// Join barrier: no segment outcome is unknown past this point.
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}
	return ctx.Err()
}

// processBatch embeds one batch of segments and upserts the vectors,
// writing the embeddings back into the shared segment slice. Batches
// never overlap, so the writes are disjoint.
func (s *IngestionService) processBatch(ctx context.Context, docID string, segments []domain.Segment, batch []int) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	texts := make([]string, len(batch))
	for i, idx := range batch {
		texts[i] = segments[idx].Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d embeddings for %d segments", domain.ErrEmbedding, len(vectors), len(batch))
	}

	for i, idx := range batch {
		seg := &segments[idx]
		seg.Embedding = vectors[i]

		meta := driven.SegmentMetadata{
			DocumentID:   seg.DocumentID,
			SegmentIndex: seg.Index,
			Pages:        seg.Pages,
			Text:         seg.Text,
		}
		if err := s.vectorIndex.Upsert(ctx, docID, seg.ID, seg.Embedding, meta); err != nil {
			return err
		}
	}
	return nil
}

// fail records the failed stage on the document and returns the cause.
func (s *IngestionService) fail(ctx context.Context, doc *domain.Document, stage string, cause error) (*domain.Document, error) {
	logger.Warn("Ingestion failed at %s: %v", stage, cause)

	doc.Status = domain.StatusFailed
	doc.FailureStage = stage
	if err := s.docStore.SetStatus(ctx, doc.ID, domain.StatusFailed, stage); err != nil {
		logger.Warn("Recording failure status: %v", err)
	}
	return doc, cause
}

// titleFromFilename derives a display title from the uploaded filename.
func titleFromFilename(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "Untitled"
	}

	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		// Dotfiles like ".hidden" have no stem; keep the base name.
		title = base
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}
