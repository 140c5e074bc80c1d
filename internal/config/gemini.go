package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/openpulse/pulse/pkg/log"
)

// GeminiConfig carries the completion/embedding provider credentials.
// A missing API key is fatal at startup; nothing else in the system is.
type GeminiConfig struct {
	APIKey         string `env:"GOOGLE_API_KEY,required,notEmpty"`
	FastModel      string `env:"PULSE_FAST_MODEL" envDefault:"gemini-2.0-flash-exp"`
	ReasoningModel string `env:"PULSE_REASONING_MODEL" envDefault:"gemini-2.0-flash-exp"`
	EmbeddingModel string `env:"PULSE_EMBEDDING_MODEL" envDefault:"text-embedding-004"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gemini config")
	}
	return c
}
