package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openpulse/pulse/internal/config"
	"github.com/openpulse/pulse/internal/core"
)

func testConfig() *config.RealtimeConfig {
	return &config.RealtimeConfig{
		RecencyCutoffYear: 2024,
		CacheTTL:          time.Minute,
		SearchTimeout:     time.Second,
		MaxSnippets:       3,
	}
}

type fakeSource struct {
	sources []core.Source
	err     error
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context, _ string) ([]core.Source, error) {
	f.calls++
	return f.sources, f.err
}

func TestGate_ShouldSearch(t *testing.T) {
	gate, err := NewGate(testConfig(), &fakeSource{})
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	tests := []struct {
		text string
		want bool
	}{
		{"qual a versão atual do go?", true},
		{"preço do bitcoin hoje", true},
		{"últimas notícias da eleição", true},
		{"what is the latest release?", true},
		{"o que mudou em 2026?", true},
		{"o que mudou em 2024?", true},
		{"a copa de 1998 foi boa", false},
		{"me explica ponteiros em go", false},
		{"como funciona um mutex?", false},
	}

	for _, tt := range tests {
		if got := gate.ShouldSearch(tt.text); got != tt.want {
			t.Errorf("ShouldSearch(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestGate_ShouldSearch_YearCutoff(t *testing.T) {
	gate, err := NewGate(testConfig(), &fakeSource{})
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	// Any 4-digit year at or past the cutoff must trigger, whatever the
	// surrounding text.
	for year := 2024; year <= 2030; year++ {
		text := fmt.Sprintf("um texto qualquer sobre %d sem outras pistas", year)
		if !gate.ShouldSearch(text) {
			t.Errorf("ShouldSearch(%q) = false, want true", text)
		}
	}
	for _, year := range []int{1990, 2000, 2023} {
		text := fmt.Sprintf("um texto qualquer sobre %d sem outras pistas", year)
		if gate.ShouldSearch(text) {
			t.Errorf("ShouldSearch(%q) = true, want false", text)
		}
	}
}

func TestGate_Context_SourceFallback(t *testing.T) {
	failing := &fakeSource{err: errors.New("network down")}
	working := &fakeSource{sources: []core.Source{
		{Title: "Go 1.26 lançado", URL: "https://example.com/go126"},
	}}

	gate, err := NewGate(testConfig(), failing, working)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	rc := gate.Context(context.Background(), "versão atual do go")

	if !rc.Verified() {
		t.Fatal("Context() not verified, want fallback source to verify")
	}
	if len(rc.Sources) != 1 || rc.Sources[0].URL != "https://example.com/go126" {
		t.Errorf("Sources = %+v, want the fallback snippet", rc.Sources)
	}
	if !strings.Contains(rc.Text, "Go 1.26 lançado") {
		t.Errorf("Text = %q, want it to cite the snippet title", rc.Text)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("source calls = %d/%d, want 1/1", failing.calls, working.calls)
	}
}

func TestGate_Context_EmptySourcesSkipped(t *testing.T) {
	empty := &fakeSource{}
	working := &fakeSource{sources: []core.Source{{Title: "t", URL: "https://example.com"}}}

	gate, err := NewGate(testConfig(), empty, working)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	rc := gate.Context(context.Background(), "noticias de hoje")
	if !rc.Verified() {
		t.Error("Context() not verified, want empty source skipped in favor of the next")
	}
}

func TestGate_Context_NegativeCaching(t *testing.T) {
	failing := &fakeSource{err: errors.New("network down")}

	gate, err := NewGate(testConfig(), failing)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	first := gate.Context(context.Background(), "preço do dólar hoje")
	if first.Verified() {
		t.Fatal("Context() verified with a failing source")
	}
	if first.Text != "" {
		t.Errorf("Text = %q, want empty for unverified context", first.Text)
	}

	// The failed lookup is cached; the source is not retried.
	second := gate.Context(context.Background(), "preço do dólar hoje")
	if second.Verified() {
		t.Error("cached Context() verified, want the negative result")
	}
	if failing.calls != 1 {
		t.Errorf("source called %d times, want 1 (negative cache)", failing.calls)
	}
}

func TestGate_Context_CacheKeyNormalizesCase(t *testing.T) {
	src := &fakeSource{sources: []core.Source{{Title: "t", URL: "https://example.com"}}}

	gate, err := NewGate(testConfig(), src)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	gate.Context(context.Background(), "Preço do Dólar")
	gate.Context(context.Background(), "  preço do dólar ")

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1 (case/space-insensitive key)", src.calls)
	}
}

func TestGate_Context_SnippetCap(t *testing.T) {
	src := &fakeSource{sources: []core.Source{
		{Title: "a", URL: "https://example.com/a"},
		{Title: "b", URL: "https://example.com/b"},
		{Title: "c", URL: "https://example.com/c"},
		{Title: "d", URL: "https://example.com/d"},
	}}

	gate, err := NewGate(testConfig(), src)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	rc := gate.Context(context.Background(), "noticias de agora")
	if len(rc.Sources) != 3 {
		t.Errorf("got %d sources, want capped at 3", len(rc.Sources))
	}
}

func TestGate_Context_CancelledRequestNotCached(t *testing.T) {
	failing := &fakeSource{err: context.Canceled}

	gate, err := NewGate(testConfig(), failing)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := gate.Context(ctx, "cotação de hoje")
	if rc.Verified() {
		t.Fatal("Context() verified on a cancelled request")
	}

	// A fresh request must retry the source instead of hitting a cache
	// entry committed by the abandoned one.
	gate.Context(context.Background(), "cotação de hoje")
	if failing.calls != 2 {
		t.Errorf("source called %d times, want 2 (no caching on cancellation)", failing.calls)
	}
}
