package realtime

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/openpulse/pulse/internal/core"
)

// FeedSource pulls verification snippets from an RSS news search feed.
type FeedSource struct {
	parser      *gofeed.Parser
	feedURL     string
	maxSnippets int
}

func NewFeedSource(feedURL string, maxSnippets int) *FeedSource {
	return &FeedSource{
		parser:      gofeed.NewParser(),
		feedURL:     feedURL,
		maxSnippets: maxSnippets,
	}
}

func (f *FeedSource) Fetch(ctx context.Context, query string) ([]core.Source, error) {
	endpoint := fmt.Sprintf("%s?q=%s&hl=pt-BR&gl=BR&ceid=BR:pt-419", f.feedURL, url.QueryEscape(query))

	feed, err := f.parser.ParseURLWithContext(endpoint, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var sources []core.Source
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		// A snippet without both a title and a link is unusable as a source.
		if title == "" || link == "" {
			continue
		}

		src := core.Source{Title: title, URL: link}
		if item.PublishedParsed != nil {
			src.PublishedAt = *item.PublishedParsed
		}
		sources = append(sources, src)

		if len(sources) >= f.maxSnippets {
			break
		}
	}

	return sources, nil
}
