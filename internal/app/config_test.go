package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/loader"
)

func TestNewConfig_Defaults(t *testing.T) {
	// --- Act ---
	cfg, err := NewConfig(Config{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

func TestNewConfig_NormalizesCase(t *testing.T) {
	cfg, err := NewConfig(Config{LogLevel: "DEBUG", LogFormat: "JSON"})

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestNewConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "log level", cfg: Config{LogLevel: "verbose"}, wantErr: "invalid log level"},
		{name: "log format", cfg: Config{LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "negative ticks", cfg: Config{Ticks: -1}, wantErr: "ticks cannot be negative"},
		{name: "negative interval", cfg: Config{TickInterval: -time.Second}, wantErr: "tick interval"},
		{name: "port out of range", cfg: Config{HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
		{name: "empty platform library", cfg: Config{Platforms: []loader.Source{{Root: "x"}}}, wantErr: "platform library path"},
		{name: "missing events path", cfg: Config{EventsPath: filepath.Join(t.TempDir(), "nope.hcl")}, wantErr: "events path"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			cfg, err := NewConfig(tc.cfg)

			// --- Assert ---
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
