package analyzers

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"github.com/RyanBlaney/sonido-sonar/algorithms/windowing"
	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
)

// SpectralFrame holds the magnitude spectrum of one windowed frame
type SpectralFrame struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	SampleRate  int       `json:"sample_rate"`
	FrameSize   int       `json:"frame_size"`
}

// Bins returns the number of frequency bins
func (f *SpectralFrame) Bins() int {
	return len(f.Magnitudes)
}

// Resolution returns the bin spacing in Hz
func (f *SpectralFrame) Resolution() float64 {
	if f.FrameSize == 0 {
		return 0
	}
	return float64(f.SampleRate) / float64(f.FrameSize)
}

// SpectralAnalyzer computes a single-frame magnitude spectrum
type SpectralAnalyzer struct {
	frameSize int
	window    *windowing.Hamming
	fft       *spectral.FFT
	logger    logging.Logger
}

// NewSpectralAnalyzer creates a new spectral analyzer for the given frame size
func NewSpectralAnalyzer(frameSize int, logger logging.Logger) *SpectralAnalyzer {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component":  "spectral_analyzer",
			"frame_size": frameSize,
		})
	}
	sa := &SpectralAnalyzer{
		frameSize: frameSize,
		fft:       spectral.NewFFT(),
		logger:    logger,
	}
	if frameSize >= 2 {
		// symmetric: 0.54 - 0.46cos(2πi/(N-1))
		sa.window = windowing.NewHamming(frameSize, true)
	}
	return sa
}

// Analyze takes the leading frameSize samples of buf, zero-padding when
// shorter, applies the Hamming window and returns the first N/2 bins.
func (sa *SpectralAnalyzer) Analyze(buf *common.AudioBuffer) (*SpectralFrame, error) {
	if buf == nil || len(buf.Samples) == 0 {
		return nil, common.NewAnalysisError("cannot analyze empty audio buffer", nil)
	}
	if sa.window == nil {
		return nil, common.NewAnalysisError(fmt.Sprintf("invalid frame size %d", sa.frameSize), nil)
	}
	if buf.SampleRate <= 0 {
		return nil, common.NewAnalysisError(fmt.Sprintf("invalid sample rate %d", buf.SampleRate), nil)
	}

	logger := sa.logger.WithFields(logging.Fields{
		"function":      "Analyze",
		"signal_length": len(buf.Samples),
	})

	frame := make([]float64, sa.frameSize)
	copied := copy(frame, buf.Samples)
	if copied < sa.frameSize {
		logger.Debug("Zero-padding short buffer", logging.Fields{
			"padding": sa.frameSize - copied,
		})
	}

	if err := sa.window.ApplyInPlace(frame); err != nil {
		return nil, common.NewAnalysisError("failed to apply window", err)
	}

	spectrum := sa.fft.Compute(frame)
	if len(spectrum) < sa.frameSize {
		return nil, common.NewAnalysisError("fft returned short spectrum", nil)
	}

	bins := sa.frameSize / 2
	result := &SpectralFrame{
		Frequencies: make([]float64, bins),
		Magnitudes:  make([]float64, bins),
		SampleRate:  buf.SampleRate,
		FrameSize:   sa.frameSize,
	}

	for i := range bins {
		re, im := real(spectrum[i]), imag(spectrum[i])
		result.Frequencies[i] = float64(i) * float64(buf.SampleRate) / float64(sa.frameSize)
		result.Magnitudes[i] = math.Sqrt(re*re + im*im)
	}

	logger.Debug("Spectrum computed", logging.Fields{
		"bins":       bins,
		"resolution": result.Resolution(),
	})

	return result, nil
}
