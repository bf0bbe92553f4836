package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// QdrantIndex is a minimal REST client to a Qdrant collection. It assumes
// cosine distance. Construct it through the factory so initialization
// (collection creation) happens lazily and is memoized.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client
}

// QdrantOptions configures a QdrantIndex.
type QdrantOptions struct {
	URL        string
	APIKey     string
	Collection string
	Dimensions int
	Timeout    time.Duration
}

// NewQdrantIndex creates the client and ensures the collection exists.
// Failure here is a configuration error: unreachable service, bad
// credentials, or schema conflict.
func NewQdrantIndex(opts QdrantOptions) (*QdrantIndex, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if opts.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	q := &QdrantIndex{
		url:        opts.URL,
		apiKey:     opts.APIKey,
		collection: opts.Collection,
		dimensions: opts.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}
	// Qdrant returns 200 if the collection already exists with the same schema.
	body := map[string]any{
		"vectors": map[string]any{
			"size":     opts.Dimensions,
			"distance": "Cosine",
		},
	}
	if err := q.doJSON(context.Background(), http.MethodPut, fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	return q, nil
}

// Upsert writes records as points; same-id points are overwritten server-side.
func (q *QdrantIndex) Upsert(ctx context.Context, records []models.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		if len(rec.Vector) != q.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(rec.Vector), q.dimensions)
		}
		points[i] = map[string]any{
			"id":     rec.ID,
			"vector": rec.Vector,
			"payload": map[string]any{
				"text":        rec.Metadata.Text,
				"filename":    rec.Metadata.Filename,
				"chunk_index": rec.Metadata.ChunkIndex,
				"category":    rec.Metadata.Category,
				"upload_date": rec.Metadata.UploadDate,
				"size":        rec.Metadata.Size,
				"document_id": rec.Metadata.DocumentID,
			},
		}
	}
	body := map[string]any{"points": points}
	return q.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection), body, nil)
}

// Query runs a filtered similarity search.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]models.SearchMatch, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if f := qdrantFilter(filter); f != nil {
		req["filter"] = f
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection), req, &resp); err != nil {
		return nil, err
	}
	matches := make([]models.SearchMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		match := models.SearchMatch{Score: clampScore(r.Score)}
		if id, ok := r.ID.(string); ok {
			match.ID = id
		} else {
			match.ID = fmt.Sprintf("%v", r.ID)
		}
		if v, ok := r.Payload["text"].(string); ok {
			match.Text = v
		}
		if v, ok := r.Payload["filename"].(string); ok {
			match.Filename = v
		}
		if v, ok := r.Payload["category"].(string); ok {
			match.Category = v
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// DeleteByFilter removes all points whose payload matches filter.
func (q *QdrantIndex) DeleteByFilter(ctx context.Context, filter Filter) error {
	f := qdrantFilter(filter)
	if f == nil {
		return fmt.Errorf("refusing to delete with unrestricted filter")
	}
	body := map[string]any{"filter": f}
	return q.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection), body, nil)
}

// Stats reads collection info.
func (q *QdrantIndex) Stats(ctx context.Context) (*models.IndexStats, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := q.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", q.url, q.collection), nil, &resp); err != nil {
		return nil, err
	}
	dim := resp.Result.Config.Params.Vectors.Size
	if dim == 0 {
		dim = q.dimensions
	}
	return &models.IndexStats{
		TotalVectors:  resp.Result.PointsCount,
		Dimension:     dim,
		IndexFullness: 0,
	}, nil
}

// Save is a no-op; Qdrant persists server-side.
func (q *QdrantIndex) Save(path string) error { return nil }

// Load is a no-op; Qdrant persists server-side.
func (q *QdrantIndex) Load(path string) error { return nil }

// Close is a no-op for the REST client.
func (q *QdrantIndex) Close() error { return nil }

// qdrantFilter converts a Filter to Qdrant's must/match form.
// Returns nil for an unrestricted filter.
func qdrantFilter(filter Filter) map[string]any {
	var must []map[string]any
	for field, want := range filter {
		if want == "" || want == FilterAll {
			continue
		}
		must = append(must, map[string]any{
			"key":   field,
			"match": map[string]any{"value": want},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
