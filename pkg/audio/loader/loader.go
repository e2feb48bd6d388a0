package loader

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/sonido-sonar/logging"
)

// Load reads a headerless mono s16le file into a normalized buffer and
// removes the file afterwards, whether or not the read succeeded.
func Load(ctx context.Context, pcmPath string, sampleRate int, logger logging.Logger) (buf *common.AudioBuffer, err error) {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "buffer_loader",
		})
	}
	logger = logger.WithFields(logging.Fields{
		"function": "Load",
		"pcm_path": pcmPath,
	})

	defer func() {
		if rmErr := os.Remove(pcmPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Error(rmErr, "Failed to remove pcm scratch file")
			if err == nil {
				buf = nil
				err = common.NewIOError(pcmPath, "failed to remove pcm scratch file", rmErr)
			}
		}
	}()

	if sampleRate <= 0 {
		return nil, common.NewAnalysisError(fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, common.NewIOError(pcmPath, "load cancelled", err)
	}

	raw, err := os.ReadFile(pcmPath)
	if err != nil {
		return nil, common.NewIOError(pcmPath, "failed to read pcm", err)
	}
	if len(raw) < 2 {
		return nil, common.NewDecodeError(pcmPath, "decoded pcm contains no samples", nil)
	}

	samples := BytesToSamples(raw)

	logger.Debug("Loaded pcm buffer", logging.Fields{
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})

	return &common.AudioBuffer{
		Samples:    samples,
		SampleRate: sampleRate,
	}, nil
}

// BytesToSamples converts little-endian int16 bytes to floats in [-1, 1).
// A trailing odd byte is ignored.
func BytesToSamples(raw []byte) []float64 {
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		samples[i] = common.Int16ToFloat64(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}
	return samples
}
