package common

import (
	"fmt"
	"math"
	"time"
)

// AudioBuffer holds decoded mono PCM normalized to [-1, 1]
type AudioBuffer struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Validate checks the buffer is non-empty with every sample in [-1, 1].
func (b *AudioBuffer) Validate() error {
	if b == nil || len(b.Samples) == 0 {
		return NewAnalysisError("audio buffer is empty", nil)
	}
	if b.SampleRate <= 0 {
		return NewAnalysisError(fmt.Sprintf("invalid sample rate %d", b.SampleRate), nil)
	}
	for i, s := range b.Samples {
		if math.IsNaN(s) || s < -1.0 || s > 1.0 {
			return NewAnalysisError(fmt.Sprintf("sample %d out of range: %f", i, s), nil)
		}
	}
	return nil
}

// Duration of the buffer at its sample rate
func (b *AudioBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Len returns the number of samples
func (b *AudioBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Int16ToFloat64 converts one little-endian s16 sample to [-1, 1).
func Int16ToFloat64(sample int16) float64 {
	return float64(sample) / 32768.0
}
