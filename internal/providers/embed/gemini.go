package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiEmbedder calls the embedContent REST endpoint.
type GeminiEmbedder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewGeminiEmbedder(apiKey, model string) *GeminiEmbedder {
	return &GeminiEmbedder{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// NewGeminiEmbedderWithBaseURL exists for tests against a local HTTP stub.
func NewGeminiEmbedderWithBaseURL(baseURL, apiKey, model string) *GeminiEmbedder {
	e := NewGeminiEmbedder(apiKey, model)
	e.baseURL = baseURL
	return e
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]any{
		"model": "models/" + e.model,
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s", e.baseURL, e.model, url.QueryEscape(e.apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(respData))
	}

	var apiResp struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(respData, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	return apiResp.Embedding.Values, nil
}
