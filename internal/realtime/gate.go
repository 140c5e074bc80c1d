package realtime

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/openpulse/pulse/internal/config"
	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/log"
	"github.com/openpulse/pulse/pkg/textnorm"
)

// temporalCues match normalized text, so accented and unaccented spellings
// collapse to the same pattern.
var temporalCues = regexp.MustCompile(`\b(hoje|agora|atual|atualmente|ultim[ao]s?|recentes?|noticias?|news|latest|today|now|current|vers(ao|oes)|version|precos?|price|cotac(ao|oes)|lei|leis|lancamentos?|agenda|resultados?)\b`)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// SnippetSource is one external verification backend. Sources are tried in
// order; the first one that yields snippets wins.
type SnippetSource interface {
	Fetch(ctx context.Context, query string) ([]core.Source, error)
}

// Gate decides whether a query is time-sensitive and, when it is, resolves
// external verification snippets. Lookups are TTL-cached by the raw
// lowercased query, negative outcomes included, so a failing query does not
// hammer the sources.
type Gate struct {
	cfg     *config.RealtimeConfig
	cache   *ristretto.Cache
	sources []SnippetSource
	now     func() time.Time
}

func NewGate(cfg *config.RealtimeConfig, sources ...SnippetSource) (*Gate, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime cache: %w", err)
	}

	if len(sources) == 0 {
		sources = []SnippetSource{
			NewFeedSource(cfg.FeedURL, cfg.MaxSnippets),
			NewAnswerSource(cfg.AnswerURL, cfg.MaxSnippets),
		}
	}

	return &Gate{
		cfg:     cfg,
		cache:   cache,
		sources: sources,
		now:     time.Now,
	}, nil
}

// ShouldSearch reports whether the text is time-sensitive: it matches a
// temporal cue, or mentions a 4-digit year at or past the recency cutoff.
func (g *Gate) ShouldSearch(text string) bool {
	normalized := textnorm.Normalize(text)

	if temporalCues.MatchString(normalized) {
		return true
	}

	for _, match := range yearPattern.FindAllStringSubmatch(normalized, -1) {
		if year, err := strconv.Atoi(match[1]); err == nil && year >= g.cfg.RecencyCutoffYear {
			return true
		}
	}

	return false
}

// Context resolves verification snippets for a time-sensitive query. Any
// source failure degrades to the next source and ultimately to an empty,
// unverified context; the empty outcome is cached like any other.
func (g *Gate) Context(ctx context.Context, text string) core.RealtimeContext {
	key := strings.ToLower(strings.TrimSpace(text))
	if cached, ok := g.cache.Get(key); ok {
		return cached.(core.RealtimeContext)
	}

	var sources []core.Source
	for _, src := range g.sources {
		fetchCtx, cancel := context.WithTimeout(ctx, g.cfg.SearchTimeout)
		snippets, err := src.Fetch(fetchCtx, text)
		cancel()
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("snippet source failed")
			continue
		}
		if len(snippets) > 0 {
			sources = snippets
			break
		}
	}
	if len(sources) > g.cfg.MaxSnippets {
		sources = sources[:g.cfg.MaxSnippets]
	}

	// An abandoned request must not populate the cache.
	if ctx.Err() != nil {
		return core.RealtimeContext{}
	}

	rc := core.RealtimeContext{Sources: sources}
	if len(sources) > 0 {
		rc.Text = g.formatContext(sources)
	}

	g.cache.SetWithTTL(key, rc, 1, g.cfg.CacheTTL)
	g.cache.Wait()

	return rc
}

func (g *Gate) formatContext(sources []core.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# VERIFICAÇÃO EXTERNA (%s)\n", g.now().Format("02/01/2006 15:04"))
	for i, src := range sources {
		fmt.Fprintf(&b, "%d. %s — %s", i+1, src.Title, src.URL)
		if !src.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", src.PublishedAt.Format("02/01/2006"))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
