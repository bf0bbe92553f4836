package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const answerPrompt = "Context: %s\n\nUser Query: %s\n\nPlease provide a helpful and accurate response based on the context provided. If the context doesn't contain relevant information, please say so."

// GoogleAIGenerator calls the Google AI generateContent endpoint.
type GoogleAIGenerator struct {
	baseURL         string
	apiKey          string
	model           string
	maxOutputTokens int
	client          *http.Client
}

// NewGoogleAIGenerator creates a generator for the given model.
func NewGoogleAIGenerator(baseURL, apiKey, model string, maxOutputTokens int, timeout time.Duration) *GoogleAIGenerator {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-pro"
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 1024
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GoogleAIGenerator{
		baseURL:         baseURL,
		apiKey:          apiKey,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		client:          &http.Client{Timeout: timeout},
	}
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate asks the backend for an answer grounded in contextText.
func (g *GoogleAIGenerator) Generate(ctx context.Context, query, contextText string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(answerPrompt, contextText, query)}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: g.maxOutputTokens,
		},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generation backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation backend returned status %d", resp.StatusCode)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return EmptyAnswer, nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// Close is a no-op; the HTTP client has no resources to release.
func (g *GoogleAIGenerator) Close() error {
	return nil
}
