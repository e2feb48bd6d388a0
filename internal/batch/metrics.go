package batch

import (
	"math"
	"slices"
	"strings"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
)

// MetricsCalculator derives aggregate statistics from a batch
type MetricsCalculator struct {
	logger logging.Logger
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator(logger logging.Logger) *MetricsCalculator {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "batch_metrics",
		})
	}
	return &MetricsCalculator{logger: logger}
}

// Stats represents statistical measures of a sample
type Stats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// Metrics aggregates a batch summary
type Metrics struct {
	SuccessRate           float64        `json:"success_rate" yaml:"success_rate"`
	BarkTypeDistribution  map[string]int `json:"bark_type_distribution" yaml:"bark_type_distribution"`
	EmotionalDistribution map[string]int `json:"emotional_distribution" yaml:"emotional_distribution"`
	IntensityDistribution map[string]int `json:"intensity_distribution" yaml:"intensity_distribution"`
	ErrorDistribution     map[string]int `json:"error_distribution" yaml:"error_distribution"`
	ProcessingTimeMs      *Stats         `json:"processing_time_ms" yaml:"processing_time_ms"`
	AudioDuration         *Stats         `json:"audio_duration_s" yaml:"audio_duration_s"`
	FundamentalHz         *Stats         `json:"fundamental_hz" yaml:"fundamental_hz"`
	PeakIntensity         *Stats         `json:"peak_intensity" yaml:"peak_intensity"`
}

// Calculate computes metrics for summary
func (mc *MetricsCalculator) Calculate(summary *Summary) *Metrics {
	metrics := &Metrics{
		BarkTypeDistribution:  make(map[string]int),
		EmotionalDistribution: make(map[string]int),
		IntensityDistribution: make(map[string]int),
		ErrorDistribution:     make(map[string]int),
	}

	var processing, durations, fundamentals, peaks []float64

	for _, item := range summary.Items {
		if item == nil {
			continue
		}
		processing = append(processing, float64(item.Elapsed.Microseconds())/1000.0)

		if !item.Succeeded() {
			metrics.ErrorDistribution[categorizeError(item.Error)]++
			continue
		}

		ac := item.Report.Result.AudioCharacteristics
		metrics.BarkTypeDistribution[ac.Classification.BarkType]++
		metrics.EmotionalDistribution[ac.Classification.EmotionalState]++
		metrics.IntensityDistribution[ac.Intensity.Description]++
		durations = append(durations, ac.Timing.Duration)
		peaks = append(peaks, ac.Intensity.Max)
		if item.Report.Features != nil {
			fundamentals = append(fundamentals, item.Report.Features.FundamentalFrequency)
		}
	}

	if summary.Total > 0 {
		metrics.SuccessRate = float64(summary.Successful) / float64(summary.Total)
	}
	metrics.ProcessingTimeMs = calculateStats(processing)
	metrics.AudioDuration = calculateStats(durations)
	metrics.FundamentalHz = calculateStats(fundamentals)
	metrics.PeakIntensity = calculateStats(peaks)

	mc.logger.Debug("Batch metrics calculated", logging.Fields{
		"success_rate": metrics.SuccessRate,
		"bark_types":   len(metrics.BarkTypeDistribution),
		"errors":       len(metrics.ErrorDistribution),
	})

	return metrics
}

// calculateStats calculates statistical measures for a dataset
func calculateStats(data []float64) *Stats {
	if len(data) == 0 {
		return &Stats{Count: 0}
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	stats := &Stats{
		Count:  len(data),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		Mean:   floats.Sum(data) / float64(len(data)),
	}

	sumSquaredDiffs := 0.0
	for _, value := range data {
		diff := value - stats.Mean
		sumSquaredDiffs += diff * diff
	}
	stats.StdDev = math.Sqrt(sumSquaredDiffs / float64(len(data)))

	return sanitizeStats(stats)
}

// sanitizeStats removes infinite and NaN values to prevent JSON serialization errors
func sanitizeStats(stats *Stats) *Stats {
	for _, v := range []*float64{&stats.Mean, &stats.Median, &stats.P95, &stats.Min, &stats.Max, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// percentile interpolates the p-th percentile of sorted data
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// categorizeError buckets an error by its audio error code, falling back
// to message inspection for errors from outside the pipeline.
func categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	switch common.ErrorCode(err) {
	case common.ErrCodeDecode:
		return "decode"
	case common.ErrCodeIO:
		return "io"
	case common.ErrCodeAnalysis:
		return "analysis"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "rejected"):
		return "rejected"
	case strings.Contains(errStr, "deadline"), strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "canceled"), strings.Contains(errStr, "cancelled"):
		return "cancelled"
	case strings.Contains(errStr, "config"), strings.Contains(errStr, "invalid"):
		return "configuration"
	}
	return "other"
}
