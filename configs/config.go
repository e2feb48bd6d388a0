package configs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	audioconfig "github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Audio analysis configuration
	Audio AudioConfig `mapstructure:"audio" yaml:"audio"`

	// Decoder configuration
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder"`

	// Upload intake limits
	Intake IntakeConfig `mapstructure:"intake" yaml:"intake"`

	// Batch execution
	Batch BatchConfig `mapstructure:"batch" yaml:"batch"`

	// Result history
	History HistoryConfig `mapstructure:"history" yaml:"history"`

	// Operational metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// AudioConfig contains spectral analysis settings
type AudioConfig struct {
	SampleRate       int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	FrameSize        int     `mapstructure:"frame_size" yaml:"frame_size"`
	MinFundamentalHz float64 `mapstructure:"min_fundamental_hz" yaml:"min_fundamental_hz"`
	MaxFundamentalHz float64 `mapstructure:"max_fundamental_hz" yaml:"max_fundamental_hz"`
}

// DecoderConfig contains format normalizer settings
type DecoderConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"`
	FFmpegPath    string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFprobePath   string `mapstructure:"ffprobe_path" yaml:"ffprobe_path"`
	ScratchDir    string `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	ScratchPrefix string `mapstructure:"scratch_prefix" yaml:"scratch_prefix"`
}

// IntakeConfig limits which files are accepted for analysis
type IntakeConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size" yaml:"max_file_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
	AllowedTypes      []string `mapstructure:"allowed_types" yaml:"allowed_types"`
}

// BatchConfig contains batch execution settings
type BatchConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// HistoryConfig controls result persistence
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// MetricsConfig controls operational metric emission
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if err := config.AnalysisConfig().Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	backend := strings.ToLower(config.Decoder.Backend)
	if !slices.Contains([]string{transcode.BackendAuto, transcode.BackendFFmpeg, transcode.BackendNative}, backend) {
		return fmt.Errorf("decoder backend must be one of auto, ffmpeg, native: %q", config.Decoder.Backend)
	}

	if config.Intake.MaxFileSize < 0 {
		return fmt.Errorf("intake max file size cannot be negative")
	}

	if config.Batch.MaxConcurrency < 0 {
		return fmt.Errorf("batch max concurrency cannot be negative")
	}

	if config.Batch.Timeout < 0 {
		return fmt.Errorf("batch timeout cannot be negative")
	}

	if config.History.Enabled && config.History.Dir == "" {
		return fmt.Errorf("history dir is required when history is enabled")
	}

	if config.Metrics.Enabled && config.Metrics.LogFile == "" {
		return fmt.Errorf("metrics log file is required when metrics are enabled")
	}

	return nil
}

// AnalysisConfig converts the audio section to the pipeline config value
func (c *Config) AnalysisConfig() audioconfig.AnalysisConfig {
	return audioconfig.AnalysisConfig{
		SampleRate:       c.Audio.SampleRate,
		FrameSize:        c.Audio.FrameSize,
		MinFundamentalHz: c.Audio.MinFundamentalHz,
		MaxFundamentalHz: c.Audio.MaxFundamentalHz,
	}
}

// NormalizerConfig converts the decoder section for the format normalizer
func (c *Config) NormalizerConfig() *transcode.NormalizerConfig {
	return &transcode.NormalizerConfig{
		Backend:       strings.ToLower(c.Decoder.Backend),
		FFmpegPath:    c.Decoder.FFmpegPath,
		FFprobePath:   c.Decoder.FFprobePath,
		ScratchDir:    c.Decoder.ScratchDir,
		ScratchPrefix: c.Decoder.ScratchPrefix,
		SampleRate:    c.Audio.SampleRate,
	}
}
