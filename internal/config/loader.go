package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"buildhook/internal/common/fsutil"
	"buildhook/internal/events"
)

// Config holds runtime parameters for the daemon and the configured events.
// Zero values mean "unspecified"; ApplyDefaults fills them in.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`
	// Enabled is the global switch for all actions; nil means on.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty" env:"ENABLED"`
	// IgnoreActions starts the daemon with host actions disallowed.
	IgnoreActions    bool              `json:"ignore_actions" yaml:"ignore_actions" toml:"ignore_actions" env:"IGNORE_ACTIONS"`
	PostProcessing   bool              `json:"post_processing" yaml:"post_processing" toml:"post_processing" env:"POST_PROCESSING"`
	ActionTimeoutSec int               `json:"action_timeout_sec" yaml:"action_timeout_sec" toml:"action_timeout_sec" env:"ACTION_TIMEOUT_SEC"`
	Shell            string            `json:"shell" yaml:"shell" toml:"shell" env:"SHELL"`
	Properties       map[string]string `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty" env:"PROPERTIES"`
	CORSEnabled      bool              `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" env:"CORS_ENABLED"`
	CORSOrigins      []string          `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty" env:"CORS_ORIGINS"`
	MaxBodyBytes     int64             `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`

	Events events.Set `json:"events" yaml:"events" toml:"events"`
}

// Load reads a configuration file based on its extension and validates it.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
