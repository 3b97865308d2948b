package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration. Flags override these
// where a command exposes the same knob.
type Config struct {
	// SaveDir is where the save database lives.
	SaveDir string `env:"AMBLE_SAVE_DIR" envDefault:"."`

	// AutosaveTurns is the autosave cadence in counted turns; 0 disables.
	AutosaveTurns int `env:"AMBLE_AUTOSAVE_TURNS" envDefault:"10"`

	// Dev enables the ":" debug command surface in the REPL.
	Dev bool `env:"AMBLE_DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"AMBLE_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.AutosaveTurns < 0 {
		return nil, fmt.Errorf("AMBLE_AUTOSAVE_TURNS must not be negative, got %d", cfg.AutosaveTurns)
	}
	return cfg, nil
}

func (c *Config) logLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
