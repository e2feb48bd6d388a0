package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioBufferValidate(t *testing.T) {
	tests := []struct {
		name    string
		buf     *AudioBuffer
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", &AudioBuffer{SampleRate: 44100}, true},
		{"zero rate", &AudioBuffer{Samples: []float64{0.1}}, true},
		{"out of range", &AudioBuffer{Samples: []float64{0.1, 1.5}, SampleRate: 44100}, true},
		{"valid", &AudioBuffer{Samples: []float64{-1, 0, 0.99}, SampleRate: 44100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAnalysis)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAudioBufferDuration(t *testing.T) {
	buf := &AudioBuffer{Samples: make([]float64, 22050), SampleRate: 44100}
	assert.Equal(t, 500*time.Millisecond, buf.Duration())
	assert.Equal(t, 22050, buf.Len())

	var nilBuf *AudioBuffer
	assert.Zero(t, nilBuf.Duration())
}

func TestInt16ToFloat64(t *testing.T) {
	assert.Equal(t, -1.0, Int16ToFloat64(-32768))
	assert.Equal(t, 0.0, Int16ToFloat64(0))
	assert.InDelta(t, 0.99997, Int16ToFloat64(32767), 1e-5)
}
