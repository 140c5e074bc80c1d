package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/openpulse/pulse/pkg/log"
)

type AppConfig struct {
	RuntimePath   string `env:"PULSE_RUNTIME_PATH" envDefault:".pulse"`
	DefaultUserID string `env:"PULSE_DEFAULT_USER" envDefault:"default_user"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

// GetDatabasePath is the sqlite file holding the open-session registry and
// the decision log.
func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "pulse.db")
}

// GetVectorPath is the on-disk location of the embedded vector store.
func (c AppConfig) GetVectorPath() string {
	return filepath.Join(c.RuntimePath, "chroma")
}
