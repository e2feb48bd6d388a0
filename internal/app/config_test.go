package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/barksync-analyzer/configs"
)

func TestGenerateExampleConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "barksync.yaml")
	require.NoError(t, GenerateExampleConfig(path))

	cfg, err := ValidateConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.GetDefaultConfig(), cfg)
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("audio:\n  frame_size: 4096\nbatch:\n  timeout: 30s\n"), 0644))
	cfg, err := ValidateConfigFile(valid)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Audio.FrameSize)
	assert.Equal(t, "30s", cfg.Batch.Timeout.String())
	assert.Equal(t, configs.DefaultMaxFileSize, int(cfg.Intake.MaxFileSize))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("decoder:\n  backend: gstreamer\n"), 0644))
	_, err = ValidateConfigFile(invalid)
	assert.Error(t, err)

	_, err = ValidateConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMergeConfig(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	cfg.OutputFormat = ""

	mergeConfig(cfg, &Context{LogLevel: "debug", Verbose: true})
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Verbose)

	mergeConfig(cfg, &Context{OutputFormat: "table"})
	assert.Equal(t, "table", cfg.OutputFormat)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, logging.WarnLevel, parseLevel("warning"))
	assert.Equal(t, logging.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logging.InfoLevel, parseLevel("bogus"))
}
