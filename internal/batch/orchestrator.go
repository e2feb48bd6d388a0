package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/barksync-analyzer/internal/analysis"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
)

// Analyzer runs the pipeline on a single file
type Analyzer interface {
	AnalyzeDetailed(ctx context.Context, path string) (*analysis.Report, error)
}

// Config contains batch execution settings
type Config struct {
	MaxConcurrency int

	// FileTimeout bounds each analysis when positive
	FileTimeout time.Duration
}

// Orchestrator analyzes many files concurrently. Files are independent;
// one failure does not cancel the others.
type Orchestrator struct {
	analyzer Analyzer
	config   Config
	metrics  *MetricsCalculator
	logger   logging.Logger
}

// NewOrchestrator creates a new batch orchestrator
func NewOrchestrator(analyzer Analyzer, cfg Config, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "batch_orchestrator",
		})
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = runtime.NumCPU()
	}

	return &Orchestrator{
		analyzer: analyzer,
		config:   cfg,
		metrics:  NewMetricsCalculator(logger),
		logger:   logger,
	}
}

// Run analyzes every path and returns items in input order.
func (o *Orchestrator) Run(ctx context.Context, paths []string) *Summary {
	startTime := time.Now()

	o.logger.Debug("Starting batch analysis", logging.Fields{
		"files":           len(paths),
		"max_concurrency": o.config.MaxConcurrency,
		"file_timeout_s":  o.config.FileTimeout.Seconds(),
	})

	items := make([]*Item, len(paths))

	var g errgroup.Group
	g.SetLimit(o.config.MaxConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			items[i] = o.analyzeOne(ctx, i, path)
			return nil
		})
	}
	_ = g.Wait()

	endTime := time.Now()
	summary := &Summary{
		Items:         items,
		Total:         len(items),
		StartTime:     startTime,
		EndTime:       endTime,
		TotalDuration: endTime.Sub(startTime),
	}
	for _, item := range items {
		if item.Succeeded() {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	summary.Metrics = o.metrics.Calculate(summary)

	o.logger.Debug("Batch analysis completed", logging.Fields{
		"total_duration_s": summary.TotalDuration.Seconds(),
		"successful":       summary.Successful,
		"failed":           summary.Failed,
	})

	return summary
}

func (o *Orchestrator) analyzeOne(ctx context.Context, index int, path string) *Item {
	item := &Item{Index: index, Path: path}
	start := time.Now()

	fileCtx := ctx
	if o.config.FileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, o.config.FileTimeout)
		defer cancel()
	}

	report, err := o.analyzer.AnalyzeDetailed(fileCtx, path)
	item.Elapsed = time.Since(start)
	if err != nil {
		item.Error = err
		item.ErrorText = err.Error()
		item.ErrorCode = common.ErrorCode(err)
		o.logger.Warn("File analysis failed", logging.Fields{
			"path":       path,
			"error_code": item.ErrorCode,
			"error":      err.Error(),
		})
		return item
	}

	item.Report = report
	return item
}
