package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/openpulse/pulse/pkg/log"
)

type ReasoningConfig struct {
	CacheSize     int `env:"PULSE_CACHE_SIZE" envDefault:"50"`
	DeepThreshold int `env:"PULSE_DEEP_THRESHOLD" envDefault:"8"`

	// Context assembly bounds.
	LookbackDays int `env:"PULSE_LOOKBACK_DAYS" envDefault:"7"`
	MaxSessions  int `env:"PULSE_MAX_SESSIONS" envDefault:"3"`
	MaxFacts     int `env:"PULSE_MAX_FACTS" envDefault:"10"`
}

func NewReasoningConfig(ctx context.Context) *ReasoningConfig {
	c := &ReasoningConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse reasoning config")
	}
	return c
}
