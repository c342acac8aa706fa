// Package qdrant provides a vector index adapter backed by the Qdrant
// REST API. Each namespace maps to one Qdrant collection, so a
// document's vectors are fully isolated from every other document's.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates requests when set.
	APIKey string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant implementing driven.VectorIndex.
// It assumes cosine distance, which Qdrant returns in an ordering
// monotonic with cosine similarity.
type Index struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewIndex creates a new Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// CreateNamespace creates the collection for a namespace if missing.
func (x *Index) CreateNamespace(ctx context.Context, namespace string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexWrite, dimensions)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 when the collection already exists with the
	// same schema.
	if err := x.do(ctx, http.MethodPut, "/collections/"+namespace, body, nil); err != nil {
		return fmt.Errorf("%w: create collection %q: %w", domain.ErrIndexWrite, namespace, err)
	}
	return nil
}

// pointPayload is the metadata stored alongside each vector.
type pointPayload struct {
	SegmentID    string `json:"segment_id"`
	DocumentID   string `json:"document_id"`
	SegmentIndex int    `json:"segment_index"`
	Pages        []int  `json:"pages"`
	Text         string `json:"text"`
}

// Upsert inserts or overwrites the vector for a segment ID. The Qdrant
// point ID is derived deterministically from the segment ID, so
// re-upserting overwrites in place.
func (x *Index) Upsert(ctx context.Context, namespace, segmentID string, vector []float32, meta driven.SegmentMetadata) error {
	body := map[string]any{
		"points": []map[string]any{{
			"id":     pointID(segmentID),
			"vector": vector,
			"payload": pointPayload{
				SegmentID:    segmentID,
				DocumentID:   meta.DocumentID,
				SegmentIndex: meta.SegmentIndex,
				Pages:        meta.Pages,
				Text:         meta.Text,
			},
		}},
	}
	if err := x.do(ctx, http.MethodPut, "/collections/"+namespace+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("%w: upsert into %q: %w", domain.ErrIndexWrite, namespace, err)
	}
	return nil
}

// Query returns up to k hits ordered by similarity descending. A missing
// or empty collection fails with domain.ErrIndexQuery so the caller can
// tell "not indexed yet" from "no relevant segments".
func (x *Index) Query(ctx context.Context, namespace string, vector []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrIndexQuery)
	}

	count, err := x.pointCount(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: namespace %q: %w", domain.ErrIndexQuery, namespace, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: namespace %q holds no entries", domain.ErrIndexQuery, namespace)
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64      `json:"score"`
			Payload pointPayload `json:"payload"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodPost, "/collections/"+namespace+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", domain.ErrIndexQuery, namespace, err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			SegmentID:  r.Payload.SegmentID,
			Similarity: r.Score,
			Metadata: driven.SegmentMetadata{
				DocumentID:   r.Payload.DocumentID,
				SegmentIndex: r.Payload.SegmentIndex,
				Pages:        r.Payload.Pages,
				Text:         r.Payload.Text,
			},
		})
	}
	return hits, nil
}

// DeleteNamespace drops the collection. Best effort: an already-missing
// collection is not an error.
func (x *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	err := x.do(ctx, http.MethodDelete, "/collections/"+namespace, nil, nil)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("%w: delete collection %q: %w", domain.ErrIndexWrite, namespace, err)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// pointCount returns the number of points in a collection.
func (x *Index) pointCount(ctx context.Context, namespace string) (int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodGet, "/collections/"+namespace, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Result.PointsCount, nil
}

// statusError carries the HTTP status of a failed Qdrant call.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}

// do performs one JSON request against the Qdrant API.
func (x *Index) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &statusError{status: resp.StatusCode, body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// pointID derives a deterministic UUID for a segment, since Qdrant point
// IDs must be UUIDs or integers.
func pointID(segmentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(segmentID)).String()
}
