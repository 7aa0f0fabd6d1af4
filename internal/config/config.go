// Package config reads bringup's runtime settings from the environment.
// Command-line flags override these values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"

	"github.com/felixgeelhaar/bringup/internal/ports"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Log backends.
const (
	LogBackendConsole = "console"
	LogBackendZap     = "zap"
)

// MaxRetries caps whole-plan re-runs.
const MaxRetries = 10

// Config holds the settings shared by every command.
type Config struct {
	LogLevel    string `env:"BRINGUP_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"BRINGUP_LOG_FORMAT" envDefault:"text"`
	LogBackend  string `env:"BRINGUP_LOG_BACKEND" envDefault:"console"`
	MetricsFile string `env:"BRINGUP_METRICS_FILE"`
	NoColor     bool   `env:"BRINGUP_NO_COLOR"`
	Retries     int    `env:"BRINGUP_RETRIES" envDefault:"0"`
}

// Load reads configuration from the process environment.
// NO_COLOR is honoured as well as BRINGUP_NO_COLOR.
func Load() (*Config, error) {
	return LoadFrom(envMap(os.Environ()))
}

// LoadFrom reads configuration from the given variables.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, ok := environ["NO_COLOR"]; ok {
		cfg.NoColor = true
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogBackend = strings.ToLower(cfg.LogBackend)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting has a supported value.
func (c *Config) Validate() error {
	if _, err := ports.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (want %s or %s)", c.LogFormat, LogFormatText, LogFormatJSON)
	}

	switch c.LogBackend {
	case LogBackendConsole, LogBackendZap:
	default:
		return fmt.Errorf("invalid log backend %q (want %s or %s)", c.LogBackend, LogBackendConsole, LogBackendZap)
	}

	if c.Retries < 0 || c.Retries > MaxRetries {
		return fmt.Errorf("retries must be between 0 and %d, got %d", MaxRetries, c.Retries)
	}
	return nil
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() ports.Level {
	level, _ := ports.ParseLevel(c.LogLevel)
	return level
}

func envMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
