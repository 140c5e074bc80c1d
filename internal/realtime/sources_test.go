package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>busca</title>
    <item>
      <title>Go 1.26 lançado com melhorias no runtime</title>
      <link>https://example.com/go126</link>
      <pubDate>Mon, 17 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/sem-titulo</link>
    </item>
    <item>
      <title>Item sem link</title>
    </item>
    <item>
      <title>Segunda notícia</title>
      <link>https://example.com/segunda</link>
    </item>
    <item>
      <title>Terceira notícia</title>
      <link>https://example.com/terceira</link>
    </item>
    <item>
      <title>Quarta notícia</title>
      <link>https://example.com/quarta</link>
    </item>
  </channel>
</rss>`

func TestFeedSource_Fetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedFixture))
	}))
	defer server.Close()

	source := NewFeedSource(server.URL, 3)
	sources, err := source.Fetch(context.Background(), "go 1.26")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotQuery != "go 1.26" {
		t.Errorf("query sent = %q, want %q", gotQuery, "go 1.26")
	}

	// Items without both title and link are skipped, and the cap holds.
	if len(sources) != 3 {
		t.Fatalf("Fetch() returned %d sources, want 3", len(sources))
	}
	if sources[0].Title != "Go 1.26 lançado com melhorias no runtime" {
		t.Errorf("first title = %q", sources[0].Title)
	}
	if sources[0].PublishedAt.IsZero() {
		t.Error("first source has no published date")
	}
	if sources[2].URL != "https://example.com/terceira" {
		t.Errorf("third url = %q, want the third valid item", sources[2].URL)
	}
}

func TestFeedSource_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewFeedSource(server.URL, 3)
	if _, err := source.Fetch(context.Background(), "qualquer"); err == nil {
		t.Error("Fetch() succeeded on a 500 response, want error")
	}
}

const answersFixture = `{
  "Heading": "Go (programming language)",
  "AbstractText": "Go is a statically typed, compiled language.",
  "AbstractURL": "https://en.wikipedia.org/wiki/Go_(programming_language)",
  "RelatedTopics": [
    {"Text": "Goroutines - lightweight threads", "FirstURL": "https://example.com/goroutines"},
    {"Text": "sem url", "FirstURL": ""},
    {"Text": "Channels in Go", "FirstURL": "https://example.com/channels"}
  ]
}`

func TestAnswerSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format param = %q, want json", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(answersFixture))
	}))
	defer server.Close()

	source := NewAnswerSource(server.URL, 2)
	sources, err := source.Fetch(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Fetch() returned %d sources, want 2 (abstract + first topic)", len(sources))
	}
	if sources[0].Title != "Go (programming language)" {
		t.Errorf("abstract title = %q", sources[0].Title)
	}
	if sources[1].URL != "https://example.com/goroutines" {
		t.Errorf("topic url = %q", sources[1].URL)
	}
}

func TestAnswerSource_FetchEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Heading": "", "AbstractText": "", "AbstractURL": "", "RelatedTopics": []}`))
	}))
	defer server.Close()

	source := NewAnswerSource(server.URL, 3)
	sources, err := source.Fetch(context.Background(), "obscuro")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("Fetch() returned %d sources, want 0", len(sources))
	}
}

func TestAnswerSource_ClientHasTimeout(t *testing.T) {
	source := NewAnswerSource("https://api.duckduckgo.com/", 3)
	if source.client.Timeout == 0 {
		t.Error("answer client has no timeout, a standalone Fetch could hang")
	}
}
