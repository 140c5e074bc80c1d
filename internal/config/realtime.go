package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/openpulse/pulse/pkg/log"
)

type RealtimeConfig struct {
	// Years at or above the cutoff mark a query as time-sensitive.
	RecencyCutoffYear int `env:"PULSE_RECENCY_CUTOFF_YEAR" envDefault:"2024"`

	CacheTTL      time.Duration `env:"PULSE_REALTIME_CACHE_TTL" envDefault:"10m"`
	SearchTimeout time.Duration `env:"PULSE_SEARCH_TIMEOUT" envDefault:"5s"`
	MaxSnippets   int           `env:"PULSE_MAX_SNIPPETS" envDefault:"3"`

	FeedURL   string `env:"PULSE_NEWS_FEED_URL" envDefault:"https://news.google.com/rss/search"`
	AnswerURL string `env:"PULSE_ANSWER_API_URL" envDefault:"https://api.duckduckgo.com/"`
}

func NewRealtimeConfig(ctx context.Context) *RealtimeConfig {
	c := &RealtimeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse realtime config")
	}
	return c
}
