package extractors

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/config"
)

// Intensity descriptors
const (
	IntensityLow      = "Low"
	IntensityModerate = "Moderate"
	IntensityHigh     = "High"
)

// Descriptor thresholds on peak amplitude, both strict
const (
	LowIntensityThreshold  = 0.3
	HighIntensityThreshold = 0.7
)

// IntensityMeasure summarizes sample amplitude
type IntensityMeasure struct {
	Max         float64 `json:"max" yaml:"max"`
	Average     float64 `json:"average" yaml:"average"`
	Description string  `json:"description" yaml:"description"`
}

// Features are the scalar descriptors the classifier works from
type Features struct {
	FundamentalFrequency float64          `json:"fundamental_frequency" yaml:"fundamental_frequency"`
	SpectralCentroid     float64          `json:"spectral_centroid" yaml:"spectral_centroid"`
	Intensity            IntensityMeasure `json:"intensity" yaml:"intensity"`
}

// Extract computes all features from a spectral frame and its source buffer.
func Extract(frame *analyzers.SpectralFrame, buf *common.AudioBuffer, band config.FrequencyBand) (*Features, error) {
	if frame == nil {
		return nil, common.NewAnalysisError("missing spectral frame", nil)
	}
	intensity, err := MeasureIntensity(buf)
	if err != nil {
		return nil, err
	}
	return &Features{
		FundamentalFrequency: FundamentalFrequency(frame, band),
		SpectralCentroid:     SpectralCentroid(frame),
		Intensity:            intensity,
	}, nil
}

// FundamentalFrequency returns the frequency of the strongest bin inside
// band. Ties go to the lowest bin. Returns 0 when no in-band bin has
// positive magnitude.
func FundamentalFrequency(frame *analyzers.SpectralFrame, band config.FrequencyBand) float64 {
	if frame == nil {
		return 0
	}

	maxMag := 0.0
	fundamental := 0.0
	for i, freq := range frame.Frequencies {
		if !band.Contains(freq) {
			continue
		}
		if frame.Magnitudes[i] > maxMag {
			maxMag = frame.Magnitudes[i]
			fundamental = freq
		}
	}
	return fundamental
}

// SpectralCentroid returns the magnitude weighted mean frequency, or 0 for
// an all-zero spectrum.
func SpectralCentroid(frame *analyzers.SpectralFrame) float64 {
	if frame == nil || len(frame.Magnitudes) == 0 {
		return 0
	}

	total := floats.Sum(frame.Magnitudes)
	if total == 0 {
		return 0
	}
	return floats.Dot(frame.Frequencies, frame.Magnitudes) / total
}

// MeasureIntensity computes peak and mean absolute amplitude of buf.
func MeasureIntensity(buf *common.AudioBuffer) (IntensityMeasure, error) {
	if buf == nil || len(buf.Samples) == 0 {
		return IntensityMeasure{}, common.NewAnalysisError("cannot measure intensity of empty buffer", nil)
	}

	abs := make([]float64, len(buf.Samples))
	for i, s := range buf.Samples {
		abs[i] = math.Abs(s)
	}

	peak := floats.Max(abs)
	return IntensityMeasure{
		Max:         peak,
		Average:     floats.Sum(abs) / float64(len(abs)),
		Description: DescribeIntensity(peak),
	}, nil
}

// DescribeIntensity maps a peak amplitude to its descriptor.
func DescribeIntensity(peak float64) string {
	switch {
	case peak < LowIntensityThreshold:
		return IntensityLow
	case peak > HighIntensityThreshold:
		return IntensityHigh
	default:
		return IntensityModerate
	}
}
