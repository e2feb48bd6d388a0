package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
)

func TestCalculateStats(t *testing.T) {
	stats := calculateStats([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 4.0, stats.Max)
	assert.Equal(t, 2.5, stats.Mean)
	assert.Equal(t, 2.5, stats.Median)
	assert.InDelta(t, 1.118034, stats.StdDev, 1e-6)

	empty := calculateStats(nil)
	assert.Equal(t, 0, empty.Count)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 30.0, percentile(sorted, 50))
	assert.InDelta(t, 48.0, percentile(sorted, 95), 1e-9)
	assert.Equal(t, 7.0, percentile([]float64{7}, 95))
	assert.Equal(t, 0.0, percentile(nil, 50))
}

func TestCategorizeError(t *testing.T) {
	assert.Equal(t, "none", categorizeError(nil))
	assert.Equal(t, "decode", categorizeError(common.NewDecodeError("a", "bad", nil)))
	assert.Equal(t, "io", categorizeError(common.NewIOError("a", "bad", nil)))
	assert.Equal(t, "analysis", categorizeError(common.NewAnalysisError("bad", nil)))
	assert.Equal(t, "timeout", categorizeError(context.DeadlineExceeded))
	assert.Equal(t, "cancelled", categorizeError(context.Canceled))
	assert.Equal(t, "rejected", categorizeError(errors.New("file rejected: too large")))
	assert.Equal(t, "other", categorizeError(errors.New("something else")))
}
