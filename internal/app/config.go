package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vk/gdcore/internal/loader"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogLevel  string
	LogFormat string

	// BaseDir holds the platform directories. Relative platform paths are
	// resolved against it.
	BaseDir string
	// Platforms replaces the built-in platform list when not empty.
	Platforms []loader.Source

	// EventsPath is an .hcl file or a directory of them.
	EventsPath  string
	DebuggerURL string

	// Seed makes random expressions reproducible. Zero seeds from the clock.
	Seed uint64
	// Ticks is the number of ticks to run. Zero runs until cancelled.
	Ticks        int
	TickInterval time.Duration

	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = DefaultLogFormat
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.Ticks < 0 {
		return nil, errors.New("ticks cannot be negative")
	}
	if cfg.TickInterval < 0 {
		return nil, errors.New("tick interval cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	for _, src := range cfg.Platforms {
		if src.Library == "" {
			return nil, errors.New("platform library path cannot be empty")
		}
	}

	if cfg.EventsPath != "" {
		if _, err := os.Stat(cfg.EventsPath); err != nil {
			return nil, fmt.Errorf("events path: %w", err)
		}
	}

	return &cfg, nil
}
