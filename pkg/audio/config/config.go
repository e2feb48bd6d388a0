package config

import "fmt"

// Canonical analysis parameters
const (
	DefaultSampleRate       = 44100
	DefaultFrameSize        = 2048
	DefaultMinFundamentalHz = 100.0
	DefaultMaxFundamentalHz = 8000.0
)

// AnalysisConfig is passed by value to each pipeline stage
type AnalysisConfig struct {
	// Target rate of the normalized PCM and of the spectral bins
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`

	// Spectral Analysis
	FrameSize int `json:"frame_size" yaml:"frame_size"`

	// Fundamental search band, inclusive [min, max] Hz
	MinFundamentalHz float64 `json:"min_fundamental_hz" yaml:"min_fundamental_hz"`
	MaxFundamentalHz float64 `json:"max_fundamental_hz" yaml:"max_fundamental_hz"`
}

// DefaultAnalysisConfig returns the canonical configuration.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SampleRate:       DefaultSampleRate,
		FrameSize:        DefaultFrameSize,
		MinFundamentalHz: DefaultMinFundamentalHz,
		MaxFundamentalHz: DefaultMaxFundamentalHz,
	}
}

// Band returns the fundamental search band
func (c AnalysisConfig) Band() FrequencyBand {
	return FrequencyBand{Min: c.MinFundamentalHz, Max: c.MaxFundamentalHz}
}

func (c AnalysisConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameSize < 2 {
		return fmt.Errorf("frame size must be at least 2, got %d", c.FrameSize)
	}
	if c.MinFundamentalHz < 0 || c.MaxFundamentalHz <= c.MinFundamentalHz {
		return fmt.Errorf("invalid fundamental band [%g, %g]", c.MinFundamentalHz, c.MaxFundamentalHz)
	}
	return nil
}

// FrequencyBand is an inclusive frequency range in Hz
type FrequencyBand struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether freq lies within the band, bounds included.
func (b FrequencyBand) Contains(freq float64) bool {
	return freq >= b.Min && freq <= b.Max
}
