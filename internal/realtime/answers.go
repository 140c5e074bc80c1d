package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/textnorm"
)

// AnswerSource is the general web fallback: the DuckDuckGo instant-answer
// JSON API. It never requires credentials, which keeps the gate usable out
// of the box.
type AnswerSource struct {
	client      *http.Client
	baseURL     string
	maxSnippets int
}

func NewAnswerSource(baseURL string, maxSnippets int) *AnswerSource {
	return &AnswerSource{
		// The gate wraps each Fetch in its own deadline; this timeout only
		// guards standalone use of the source.
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		maxSnippets: maxSnippets,
	}
}

func (a *AnswerSource) Fetch(ctx context.Context, query string) ([]core.Source, error) {
	endpoint := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1", a.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var apiResp struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var sources []core.Source
	if apiResp.AbstractText != "" && apiResp.AbstractURL != "" {
		title := apiResp.Heading
		if title == "" {
			title = textnorm.Truncate(apiResp.AbstractText, 80)
		}
		sources = append(sources, core.Source{Title: title, URL: apiResp.AbstractURL})
	}

	for _, topic := range apiResp.RelatedTopics {
		if len(sources) >= a.maxSnippets {
			break
		}
		title := strings.TrimSpace(topic.Text)
		link := strings.TrimSpace(topic.FirstURL)
		if title == "" || link == "" {
			continue
		}
		sources = append(sources, core.Source{Title: textnorm.Truncate(title, 80), URL: link})
	}

	return sources, nil
}
