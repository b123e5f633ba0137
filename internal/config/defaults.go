package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"buildhook/internal/events"
)

const (
	DefaultAddr         = ":18090"
	DefaultMaxBodyBytes = 1 << 20
)

// EnvPrefix is prepended to every environment override, e.g. BUILDHOOK_ADDR.
const EnvPrefix = "BUILDHOOK_"

// ApplyEnv overrides cfg with BUILDHOOK_* environment variables that are set.
// Events are never read from the environment.
func ApplyEnv(cfg *Config) error {
	set := cfg.Events
	cfg.Events = events.Set{}
	defer func() { cfg.Events = set }()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// IsEnabled reports the global action switch.
func (c Config) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// ActionTimeout is the per-action process timeout; zero means none.
func (c Config) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSec) * time.Second
}

// Level parses LogLevel; empty means info.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate checks daemon settings and every configured event.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	if c.ActionTimeoutSec < 0 {
		return fmt.Errorf("action_timeout_sec: must be >= 0")
	}
	return c.Events.Validate()
}
