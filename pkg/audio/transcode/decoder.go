package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
	"github.com/RyanBlaney/sonido-sonar/logging"
)

// Backend names
const (
	BackendAuto   = "auto"
	BackendFFmpeg = "ffmpeg"
	BackendNative = "native"
)

// SourceInfo describes a source file as seen by the container probe
type SourceInfo struct {
	Path       string  `json:"path" yaml:"path"`
	SizeBytes  int64   `json:"size_bytes" yaml:"size_bytes"`
	Duration   float64 `json:"duration" yaml:"duration"`
	Format     string  `json:"format" yaml:"format"`
	Codec      string  `json:"codec,omitempty" yaml:"codec,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Channels   int     `json:"channels,omitempty" yaml:"channels,omitempty"`
	Backend    string  `json:"backend" yaml:"backend"`
}

// MediaDecoder converts a source file into raw mono s16le PCM
type MediaDecoder interface {
	// Decode writes mono s16le PCM at sampleRate to dst
	Decode(ctx context.Context, src, dst string, sampleRate int) error

	// Probe reads container metadata without a full decode
	Probe(ctx context.Context, src string) (*SourceInfo, error)

	Name() string
}

// NormalizerConfig holds format normalizer configuration
type NormalizerConfig struct {
	Backend       string `json:"backend"`
	FFmpegPath    string `json:"ffmpeg_path"`
	FFprobePath   string `json:"ffprobe_path"`
	ScratchDir    string `json:"scratch_dir"`
	ScratchPrefix string `json:"scratch_prefix"`
	SampleRate    int    `json:"sample_rate"`
}

// DefaultNormalizerConfig returns default normalizer configuration
func DefaultNormalizerConfig() *NormalizerConfig {
	return &NormalizerConfig{
		Backend:       BackendAuto,
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
		ScratchDir:    os.TempDir(),
		ScratchPrefix: "barksync",
		SampleRate:    config.DefaultSampleRate,
	}
}

// Normalizer turns arbitrary audio files into canonical PCM scratch files
type Normalizer struct {
	config  *NormalizerConfig
	backend MediaDecoder
	logger  logging.Logger
}

// NewNormalizer creates a normalizer with the configured backend.
func NewNormalizer(cfg *NormalizerConfig, logger logging.Logger) (*Normalizer, error) {
	if cfg == nil {
		cfg = DefaultNormalizerConfig()
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", cfg.SampleRate)
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "format_normalizer",
		})
	}

	backend, err := selectBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		config:  cfg,
		backend: backend,
		logger:  logger,
	}, nil
}

// NewNormalizerWithBackend creates a normalizer around a caller-provided decoder.
func NewNormalizerWithBackend(cfg *NormalizerConfig, backend MediaDecoder, logger logging.Logger) *Normalizer {
	if cfg == nil {
		cfg = DefaultNormalizerConfig()
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "format_normalizer",
		})
	}
	return &Normalizer{config: cfg, backend: backend, logger: logger}
}

func selectBackend(cfg *NormalizerConfig, logger logging.Logger) (MediaDecoder, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendFFmpeg:
		if !FFmpegAvailable(cfg.FFmpegPath, cfg.FFprobePath) {
			return nil, fmt.Errorf("ffmpeg backend requested but %s/%s not found", cfg.FFmpegPath, cfg.FFprobePath)
		}
		return NewFFmpegDecoder(cfg.FFmpegPath, cfg.FFprobePath, logger), nil
	case BackendNative:
		return NewNativeDecoder(logger), nil
	case BackendAuto, "":
		if FFmpegAvailable(cfg.FFmpegPath, cfg.FFprobePath) {
			return NewFFmpegDecoder(cfg.FFmpegPath, cfg.FFprobePath, logger), nil
		}
		logger.Debug("ffmpeg not found, using native decoder")
		return NewNativeDecoder(logger), nil
	default:
		return nil, fmt.Errorf("unknown decoder backend: %s", cfg.Backend)
	}
}

// FFmpegAvailable reports whether both binaries resolve on PATH.
func FFmpegAvailable(ffmpegPath, ffprobePath string) bool {
	if _, err := exec.LookPath(ffmpegPath); err != nil {
		return false
	}
	if _, err := exec.LookPath(ffprobePath); err != nil {
		return false
	}
	return true
}

// Backend returns the name of the active decoder backend
func (n *Normalizer) Backend() string {
	return n.backend.Name()
}

// SampleRate returns the canonical output rate
func (n *Normalizer) SampleRate() int {
	return n.config.SampleRate
}

// Normalize decodes src into a mono s16le scratch file at the canonical rate
// and returns its path. The caller owns the returned file. On failure no
// file created here is left behind.
func (n *Normalizer) Normalize(ctx context.Context, src string) (pcmPath string, err error) {
	logger := n.logger.WithFields(logging.Fields{
		"function": "Normalize",
		"source":   src,
		"backend":  n.backend.Name(),
	})

	if _, err := validateSource(src); err != nil {
		return "", err
	}

	dst := ScratchPath(n.config.ScratchDir, n.config.ScratchPrefix, ".pcm")
	defer func() {
		if err != nil {
			if rmErr := RemoveScratch(dst); rmErr != nil {
				logger.Warn("Failed to remove partial pcm output", logging.Fields{
					"pcm_path": dst,
					"error":    rmErr.Error(),
				})
			}
		}
	}()

	logger.Debug("Normalizing audio", logging.Fields{
		"pcm_path":    dst,
		"sample_rate": n.config.SampleRate,
	})

	if err := n.backend.Decode(ctx, src, dst, n.config.SampleRate); err != nil {
		return "", asDecodeError(src, "failed to decode audio", err)
	}
	if err := ctx.Err(); err != nil {
		return "", common.NewDecodeError(src, "decode cancelled", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return "", common.NewDecodeError(src, "decoder produced no output", err)
	}
	if info.Size() < 2 {
		return "", common.NewDecodeError(src, "decoder produced no audio", nil)
	}

	logger.Debug("Audio normalized", logging.Fields{
		"pcm_path":  dst,
		"pcm_bytes": info.Size(),
	})

	return dst, nil
}

// Probe returns container metadata for src.
func (n *Normalizer) Probe(ctx context.Context, src string) (*SourceInfo, error) {
	size, err := validateSource(src)
	if err != nil {
		return nil, err
	}

	info, err := n.backend.Probe(ctx, src)
	if err != nil {
		return nil, asDecodeError(src, "failed to probe audio", err)
	}
	info.Path = src
	info.SizeBytes = size
	info.Backend = n.backend.Name()

	n.logger.Debug("Audio probed", logging.Fields{
		"function":    "Probe",
		"source":      src,
		"duration":    info.Duration,
		"format":      info.Format,
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
	})

	return info, nil
}

// Duration returns the source duration in seconds from container metadata.
func (n *Normalizer) Duration(ctx context.Context, src string) (float64, error) {
	info, err := n.Probe(ctx, src)
	if err != nil {
		return 0, err
	}
	if info.Duration <= 0 {
		return 0, common.NewDecodeError(src, "duration could not be determined", nil)
	}
	return info.Duration, nil
}

func validateSource(src string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, common.NewDecodeError(src, "source file not accessible", err)
	}
	if info.IsDir() {
		return 0, common.NewDecodeError(src, "source is a directory", nil)
	}
	if info.Size() == 0 {
		return 0, common.NewDecodeError(src, "source file is empty", nil)
	}
	return info.Size(), nil
}

func asDecodeError(src, message string, err error) error {
	if _, ok := err.(*common.AudioError); ok {
		return err
	}
	return common.NewDecodeError(src, message, err)
}
