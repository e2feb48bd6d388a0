package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	audioconfig "github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
)

// DefaultMaxFileSize mirrors the upload limit of the web service
const DefaultMaxFileSize = 10 * 1024 * 1024

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output_format", d.OutputFormat)

	// Audio defaults
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.frame_size", d.Audio.FrameSize)
	v.SetDefault("audio.min_fundamental_hz", d.Audio.MinFundamentalHz)
	v.SetDefault("audio.max_fundamental_hz", d.Audio.MaxFundamentalHz)

	// Decoder defaults
	v.SetDefault("decoder.backend", d.Decoder.Backend)
	v.SetDefault("decoder.ffmpeg_path", d.Decoder.FFmpegPath)
	v.SetDefault("decoder.ffprobe_path", d.Decoder.FFprobePath)
	v.SetDefault("decoder.scratch_dir", d.Decoder.ScratchDir)
	v.SetDefault("decoder.scratch_prefix", d.Decoder.ScratchPrefix)

	// Intake defaults
	v.SetDefault("intake.max_file_size", d.Intake.MaxFileSize)
	v.SetDefault("intake.allowed_extensions", d.Intake.AllowedExtensions)
	v.SetDefault("intake.allowed_types", d.Intake.AllowedTypes)

	// Batch defaults
	v.SetDefault("batch.max_concurrency", d.Batch.MaxConcurrency)
	v.SetDefault("batch.timeout", d.Batch.Timeout)

	// History defaults
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.dir", d.History.Dir)

	// Metrics defaults
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.log_file", d.Metrics.LogFile)
}

// GetDefaultConfig returns a complete default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "json",
		Audio:        GetDefaultAudioConfig(),
		Decoder:      GetDefaultDecoderConfig(),
		Intake:       GetDefaultIntakeConfig(),
		Batch:        GetDefaultBatchConfig(),
		History:      GetDefaultHistoryConfig(),
		Metrics:      GetDefaultMetricsConfig(),
	}
}

// GetDefaultAudioConfig returns the canonical analysis parameters
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:       audioconfig.DefaultSampleRate,
		FrameSize:        audioconfig.DefaultFrameSize,
		MinFundamentalHz: audioconfig.DefaultMinFundamentalHz,
		MaxFundamentalHz: audioconfig.DefaultMaxFundamentalHz,
	}
}

func GetDefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Backend:       transcode.BackendAuto,
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
		ScratchDir:    os.TempDir(),
		ScratchPrefix: "barksync",
	}
}

func GetDefaultIntakeConfig() IntakeConfig {
	return IntakeConfig{
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: []string{".wav", ".mp3", ".m4a", ".mp4", ".ogg", ".aac", ".webm"},
		AllowedTypes: []string{
			"audio/wav",
			"audio/wave",
			"audio/x-wav",
			"audio/mpeg",
			"audio/mp4",
			"video/mp4",
			"audio/x-m4a",
			"audio/m4a",
			"audio/ogg",
			"application/ogg",
			"audio/aac",
			"video/webm",
			"application/octet-stream",
		},
	}
}

func GetDefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxConcurrency: 4,
		Timeout:        0,
	}
}

func GetDefaultHistoryConfig() HistoryConfig {
	home, _ := os.UserHomeDir()
	return HistoryConfig{
		Enabled: false,
		Dir:     filepath.Join(home, ".local", "share", "barksync", "history"),
	}
}

func GetDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		LogFile: filepath.Join(os.TempDir(), "barksync-metrics.log"),
	}
}
