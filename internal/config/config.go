// Package config loads runtime settings from XR_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the demo runtime configuration.
type Config struct {
	Headless bool   `env:"XR_HEADLESS" envDefault:"false"`
	Hz       int    `env:"XR_HZ" envDefault:"60"`
	Ticks    uint64 `env:"XR_TICKS" envDefault:"0"`
	Width    int    `env:"XR_WIDTH" envDefault:"640"`
	Height   int    `env:"XR_HEIGHT" envDefault:"480"`

	// TracePath selects the replay bridge when set.
	TracePath string `env:"XR_TRACE"`

	Mode        string        `env:"XR_MODE" envDefault:"immersive-ar"`
	Features    []string      `env:"XR_FEATURES" envSeparator:","`
	OrbitRadius float32       `env:"XR_ORBIT_RADIUS" envDefault:"2"`
	OrbitPeriod time.Duration `env:"XR_ORBIT_PERIOD" envDefault:"12s"`
	Heading     float32       `env:"XR_HEADING" envDefault:"0"`
	DepthNear   float32       `env:"XR_DEPTH_NEAR" envDefault:"0.1"`
	DepthFar    float32       `env:"XR_DEPTH_FAR" envDefault:"1000"`

	LogLevel string `env:"XR_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the runtime cannot use.
func (c Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("invalid hz: %d", c.Hz)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size: %dx%d", c.Width, c.Height)
	}
	if c.DepthNear <= 0 || c.DepthFar <= c.DepthNear {
		return fmt.Errorf("invalid depth range: %v..%v", c.DepthNear, c.DepthFar)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto a slog level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
