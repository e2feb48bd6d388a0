package extractors

import (
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/barksync-analyzer/internal/audiotest"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
)

var band = config.DefaultAnalysisConfig().Band()

func frameOf(mags ...float64) *analyzers.SpectralFrame {
	f := &analyzers.SpectralFrame{
		Frequencies: make([]float64, len(mags)),
		Magnitudes:  mags,
		SampleRate:  44100,
		FrameSize:   2 * len(mags),
	}
	for i := range mags {
		f.Frequencies[i] = float64(i) * 44100 / float64(2*len(mags))
	}
	return f
}

func TestFundamentalFrequencyBandLimits(t *testing.T) {
	frame := &analyzers.SpectralFrame{
		Frequencies: []float64{50, 99.9, 100, 500, 8000, 8000.1},
		Magnitudes:  []float64{100, 90, 1, 2, 3, 80},
	}
	assert.Equal(t, 8000.0, FundamentalFrequency(frame, band))

	frame.Magnitudes = []float64{100, 90, 5, 2, 3, 80}
	assert.Equal(t, 100.0, FundamentalFrequency(frame, band))
}

func TestFundamentalFrequencyTieKeepsFirst(t *testing.T) {
	frame := &analyzers.SpectralFrame{
		Frequencies: []float64{150, 300, 450},
		Magnitudes:  []float64{1, 4, 4},
	}
	assert.Equal(t, 300.0, FundamentalFrequency(frame, band))
}

func TestFundamentalFrequencyZeroSpectrum(t *testing.T) {
	frame := frameOf(0, 0, 0, 0)
	assert.Equal(t, 0.0, FundamentalFrequency(frame, band))
	assert.Equal(t, 0.0, FundamentalFrequency(nil, band))
}

func TestFundamentalFrequencyFromSine(t *testing.T) {
	buf := &common.AudioBuffer{Samples: audiotest.Samples(2048, audiotest.Sine(44100, 3000, 0.5)), SampleRate: 44100}
	frame, err := analyzers.NewSpectralAnalyzer(2048, &logging.NoOpLogger{}).Analyze(buf)
	require.NoError(t, err)

	assert.InDelta(t, 3000.0, FundamentalFrequency(frame, band), frame.Resolution())
}

func TestSpectralCentroid(t *testing.T) {
	frame := &analyzers.SpectralFrame{
		Frequencies: []float64{0, 100, 200, 300},
		Magnitudes:  []float64{0, 1, 0, 1},
	}
	assert.InDelta(t, 200.0, SpectralCentroid(frame), 1e-12)

	frame.Magnitudes = []float64{0, 0, 0, 0}
	assert.Equal(t, 0.0, SpectralCentroid(frame))
	assert.Equal(t, 0.0, SpectralCentroid(nil))
}

func TestMeasureIntensity(t *testing.T) {
	m, err := MeasureIntensity(&common.AudioBuffer{Samples: []float64{0.5, -0.8, 0.1, 0}, SampleRate: 44100})
	require.NoError(t, err)
	assert.Equal(t, 0.8, m.Max)
	assert.InDelta(t, 0.35, m.Average, 1e-12)
	assert.Equal(t, IntensityHigh, m.Description)
	assert.LessOrEqual(t, m.Average, m.Max)

	_, err = MeasureIntensity(&common.AudioBuffer{SampleRate: 44100})
	assert.ErrorIs(t, err, common.ErrAnalysis)
}

func TestDescribeIntensityBoundaries(t *testing.T) {
	tests := []struct {
		peak float64
		want string
	}{
		{0, IntensityLow},
		{0.29, IntensityLow},
		{0.3, IntensityModerate},
		{0.5, IntensityModerate},
		{0.7, IntensityModerate},
		{0.71, IntensityHigh},
		{1, IntensityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeIntensity(tt.peak), "peak %v", tt.peak)
	}
}

func TestExtract(t *testing.T) {
	buf := &common.AudioBuffer{Samples: audiotest.Samples(2048, audiotest.Silence()), SampleRate: 44100}
	frame, err := analyzers.NewSpectralAnalyzer(2048, &logging.NoOpLogger{}).Analyze(buf)
	require.NoError(t, err)

	features, err := Extract(frame, buf, band)
	require.NoError(t, err)
	assert.Equal(t, 0.0, features.FundamentalFrequency)
	assert.Equal(t, 0.0, features.SpectralCentroid)
	assert.Equal(t, IntensityMeasure{Max: 0, Average: 0, Description: IntensityLow}, features.Intensity)

	_, err = Extract(nil, buf, band)
	assert.ErrorIs(t, err, common.ErrAnalysis)
}
