package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/extractors"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/loader"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
	"github.com/RyanBlaney/barksync-analyzer/pkg/vocalization"
)

// Engine runs the vocalization analysis pipeline. It is safe for
// concurrent use; each call owns its own scratch files.
type Engine struct {
	analysis   config.AnalysisConfig
	normalizer *transcode.Normalizer
	spectral   *analyzers.SpectralAnalyzer
	clock      func() time.Time
	logger     logging.Logger
}

// EngineConfig contains configuration for the analysis engine
type EngineConfig struct {
	Analysis   config.AnalysisConfig
	Normalizer *transcode.NormalizerConfig
	Logger     logging.Logger

	// Decoder overrides the backend chosen by Normalizer.Backend
	Decoder transcode.MediaDecoder

	// Clock stamps results; defaults to time.Now
	Clock func() time.Time
}

// NewEngine creates a new analysis engine
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = &EngineConfig{Analysis: config.DefaultAnalysisConfig()}
	}
	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "analysis_engine",
		})
	}

	normCfg := cfg.Normalizer
	if normCfg == nil {
		normCfg = transcode.DefaultNormalizerConfig()
	}
	// the normalizer emits PCM at the analysis rate
	normCopy := *normCfg
	normCopy.SampleRate = cfg.Analysis.SampleRate

	var normalizer *transcode.Normalizer
	if cfg.Decoder != nil {
		normalizer = transcode.NewNormalizerWithBackend(&normCopy, cfg.Decoder, logger)
	} else {
		var err error
		normalizer, err = transcode.NewNormalizer(&normCopy, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create normalizer: %w", err)
		}
	}

	return newEngine(cfg, normalizer, logger), nil
}

func newEngine(cfg *EngineConfig, normalizer *transcode.Normalizer, logger logging.Logger) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		analysis:   cfg.Analysis,
		normalizer: normalizer,
		spectral:   analyzers.NewSpectralAnalyzer(cfg.Analysis.FrameSize, logger),
		clock:      clock,
		logger:     logger,
	}
}

// Backend returns the active decoder backend name
func (e *Engine) Backend() string {
	return e.normalizer.Backend()
}

// Probe returns container metadata for path without decoding it.
func (e *Engine) Probe(ctx context.Context, path string) (*transcode.SourceInfo, error) {
	return e.normalizer.Probe(ctx, path)
}

// Analyze runs the full pipeline on the file at path.
func (e *Engine) Analyze(ctx context.Context, path string) (*vocalization.Result, error) {
	report, err := e.AnalyzeDetailed(ctx, path)
	if err != nil {
		return nil, err
	}
	return report.Result, nil
}

// AnalyzeDetailed runs the full pipeline and keeps the intermediate
// features, source metadata and stage timings.
func (e *Engine) AnalyzeDetailed(ctx context.Context, path string) (*Report, error) {
	logger := e.logger.WithFields(logging.Fields{
		"function": "AnalyzeDetailed",
		"source":   path,
	})

	report := &Report{Source: path}
	totalStart := time.Now()

	logger.Debug("Starting vocalization analysis")

	// Step 1: Probe container metadata
	stepStart := time.Now()
	info, err := e.normalizer.Probe(ctx, path)
	if err != nil {
		logger.Error(err, "Failed to probe source")
		return nil, err
	}
	if info.Duration <= 0 {
		// streamed containers often omit duration; the decoded buffer decides
		logger.Warn("Source reports no duration", logging.Fields{
			"format": info.Format,
		})
	}
	report.SourceInfo = info
	report.Timings.Probe = time.Since(stepStart)

	// Step 2: Normalize to canonical PCM
	stepStart = time.Now()
	pcmPath, err := e.normalizer.Normalize(ctx, path)
	if err != nil {
		logger.Error(err, "Failed to normalize source")
		return nil, err
	}
	defer func() {
		if rmErr := transcode.RemoveScratch(pcmPath); rmErr != nil {
			logger.Warn("Failed to remove pcm scratch file", logging.Fields{
				"pcm_path": pcmPath,
				"error":    rmErr.Error(),
			})
		}
	}()
	report.Timings.Normalize = time.Since(stepStart)

	// Step 3: Load samples, consuming the scratch file
	stepStart = time.Now()
	buf, err := loader.Load(ctx, pcmPath, e.analysis.SampleRate, logger)
	if err != nil {
		logger.Error(err, "Failed to load pcm")
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	report.Timings.Load = time.Since(stepStart)

	// Step 4: Spectrum of the leading frame
	stepStart = time.Now()
	frame, err := e.spectral.Analyze(buf)
	if err != nil {
		logger.Error(err, "Spectral analysis failed")
		return nil, err
	}
	report.Timings.Spectral = time.Since(stepStart)

	// Step 5: Features
	stepStart = time.Now()
	features, err := extractors.Extract(frame, buf, e.analysis.Band())
	if err != nil {
		logger.Error(err, "Feature extraction failed")
		return nil, err
	}
	report.Features = features
	report.Timings.Features = time.Since(stepStart)

	// Step 6: Classify and assemble
	// timing reflects the decoded buffer, not the container header
	duration := float64(buf.Len()) / float64(buf.SampleRate)
	classification := vocalization.Classify(features.FundamentalFrequency, features.Intensity.Max)
	report.Result = vocalization.Assemble(classification, features.Intensity, duration, e.clock())
	report.Reference = lookupReference(classification)
	report.Timings.Total = time.Since(totalStart)

	logger.Debug("Vocalization analysis completed", logging.Fields{
		"bark_type":           classification.BarkType,
		"emotional_state":     classification.EmotionalState,
		"fundamental_hz":      features.FundamentalFrequency,
		"spectral_centroid":   features.SpectralCentroid,
		"intensity_max":       features.Intensity.Max,
		"duration_s":          duration,
		"total_processing_ms": report.Timings.Total.Milliseconds(),
	})

	return report, nil
}
