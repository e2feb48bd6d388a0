package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, ValidateConfig(cfg))

	analysis := cfg.AnalysisConfig()
	assert.Equal(t, 44100, analysis.SampleRate)
	assert.Equal(t, 2048, analysis.FrameSize)
	assert.Equal(t, 100.0, analysis.MinFundamentalHz)
	assert.Equal(t, 8000.0, analysis.MaxFundamentalHz)

	norm := cfg.NormalizerConfig()
	assert.Equal(t, "auto", norm.Backend)
	assert.Equal(t, 44100, norm.SampleRate)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad frame size", func(c *Config) { c.Audio.FrameSize = 0 }},
		{"bad band", func(c *Config) { c.Audio.MaxFundamentalHz = 10 }},
		{"bad backend", func(c *Config) { c.Decoder.Backend = "gstreamer" }},
		{"negative size", func(c *Config) { c.Intake.MaxFileSize = -1 }},
		{"negative concurrency", func(c *Config) { c.Batch.MaxConcurrency = -2 }},
		{"history without dir", func(c *Config) { c.History.Enabled = true; c.History.Dir = "" }},
		{"metrics without file", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.LogFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barksync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
audio:
  frame_size: 4096
decoder:
  backend: native
batch:
  max_concurrency: 2
  timeout: 15s
`), 0o644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	v := viper.GetViper()

	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4096, cfg.Audio.FrameSize)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, "native", cfg.Decoder.Backend)
	assert.Equal(t, 2, cfg.Batch.MaxConcurrency)
	assert.Equal(t, 15*time.Second, cfg.Batch.Timeout)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Intake.MaxFileSize)
	assert.Contains(t, cfg.Intake.AllowedExtensions, ".m4a")
	assert.NoError(t, ValidateConfig(cfg))
}
