package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime knobs read from the environment.
type Config struct {
	// TickInterval is the period used by Run.
	TickInterval time.Duration `env:"VELENTR_TICK_INTERVAL" envDefault:"16ms"`

	// StrictDevices makes device hubs reject conditions on unconfigured
	// device families at construction.
	StrictDevices bool `env:"VELENTR_STRICT_DEVICES" envDefault:"false"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `env:"VELENTR_LOG_LEVEL" envDefault:"info"`

	// MaxFiresPerTick bounds dispatch per tick; 0 is unlimited.
	MaxFiresPerTick int `env:"VELENTR_MAX_FIRES_PER_TICK" envDefault:"0"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

// LoadConfigFrom reads Config from the given variables instead of the
// process environment.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("VELENTR_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.MaxFiresPerTick < 0 {
		return fmt.Errorf("VELENTR_MAX_FIRES_PER_TICK must not be negative, got %d", c.MaxFiresPerTick)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("VELENTR_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// Options converts the config into engine options.
func (c Config) Options() []Option {
	var opts []Option
	if c.MaxFiresPerTick > 0 {
		opts = append(opts, WithMaxFiresPerTick(c.MaxFiresPerTick))
	}
	return opts
}
