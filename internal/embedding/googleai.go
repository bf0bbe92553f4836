package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleAIEmbedder calls the Google AI embedContent endpoint.
// It returns errors for any transport, status, or payload problem; wrap it
// in a Fallback to get the degraded-but-live behavior the pipeline expects.
type GoogleAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

// NewGoogleAIEmbedder creates an embedder for the given model and dimension.
func NewGoogleAIEmbedder(baseURL, apiKey, model string, dimensions int, timeout time.Duration) *GoogleAIEmbedder {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "embedding-001"
	}
	if dimensions <= 0 {
		dimensions = 768
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleAIEmbedder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed generates an embedding for a single text.
func (e *GoogleAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedContentRequest{
		Model:   "models/" + e.model,
		Content: content{Parts: []part{{Text: text}}},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s", e.baseURL, e.model, url.QueryEscape(e.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding backend returned status %d", resp.StatusCode)
	}

	var out embedContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Embedding.Values) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(out.Embedding.Values), e.dimensions)
	}
	return out.Embedding.Values, nil
}

// EmbedBatch calls Embed sequentially, in order. Sequential on purpose: it
// bounds concurrent outbound requests and keeps chunk ordering deterministic.
func (e *GoogleAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension.
func (e *GoogleAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client has no resources to release.
func (e *GoogleAIEmbedder) Close() error {
	return nil
}
