package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/barksync-analyzer/configs"
	"github.com/RyanBlaney/barksync-analyzer/internal/analysis"
	"github.com/RyanBlaney/barksync-analyzer/internal/batch"
	"github.com/RyanBlaney/barksync-analyzer/internal/history"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	OutputFile   string
	OutputFormat string
	LogLevel     string
	Verbose      bool
	Quiet        bool
	Detailed     bool
	RemoveSource bool
	NoHistory    bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// AnalyzerApp handles the analyzer application lifecycle
type AnalyzerApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
	engine *analysis.Engine
	intake *Intake
	stdout io.Writer
}

// NewAnalyzerApp creates a new analyzer application
func NewAnalyzerApp(ctx *Context) (*AnalyzerApp, error) {
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	log := setupLogging(ctx, config)
	ctx.Logger = log

	engine, err := analysis.NewEngine(&analysis.EngineConfig{
		Analysis:   config.AnalysisConfig(),
		Normalizer: config.NormalizerConfig(),
		Logger:     log.WithFields(logging.Fields{"component": "analysis_engine"}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis engine: %w", err)
	}

	log.Debug("Analyzer application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"output_format": config.OutputFormat,
		"backend":       engine.Backend(),
		"sample_rate":   config.Audio.SampleRate,
		"frame_size":    config.Audio.FrameSize,
		"history":       config.History.Enabled && !ctx.NoHistory,
	})

	return &AnalyzerApp{
		ctx:    ctx,
		config: config,
		logger: log,
		engine: engine,
		intake: NewIntake(config.Intake),
		stdout: os.Stdout,
	}, nil
}

// Engine exposes the configured analysis engine
func (app *AnalyzerApp) Engine() *analysis.Engine {
	return app.engine
}

// Config returns the merged configuration
func (app *AnalyzerApp) Config() *configs.Config {
	return app.config
}

// Run analyzes every path and writes the results
func (app *AnalyzerApp) Run(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given")
	}

	app.logger.Debug("Starting analysis run", logging.Fields{
		"files":         len(paths),
		"remove_source": app.ctx.RemoveSource,
	})

	analyzer := &intakeAnalyzer{
		next:         app.engine,
		intake:       app.intake,
		removeSource: app.ctx.RemoveSource,
		onRemoveErr: func(path string, err error) {
			app.logger.Warn("Failed to remove source file", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		},
	}

	orchestrator := batch.NewOrchestrator(analyzer, batch.Config{
		MaxConcurrency: app.config.Batch.MaxConcurrency,
		FileTimeout:    app.config.Batch.Timeout,
	}, app.logger.WithFields(logging.Fields{"component": "batch_orchestrator"}))

	summary := orchestrator.Run(ctx, paths)

	historyIDs := app.saveHistory(ctx, summary)

	if err := app.outputResults(summary, historyIDs); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if app.config.Metrics.Enabled {
		app.collectMetrics(summary)
	}

	if summary.Failed > 0 && summary.Successful == 0 {
		if summary.Total == 1 {
			return summary.Items[0].Error
		}
		return fmt.Errorf("all %d analyses failed", summary.Failed)
	}

	return nil
}

// Probe returns container metadata for path after the intake check
func (app *AnalyzerApp) Probe(ctx context.Context, path string) (*transcode.SourceInfo, error) {
	if err := app.intake.Check(path); err != nil {
		return nil, err
	}
	return app.engine.Probe(ctx, path)
}

// OpenHistory opens the configured result history store
func (app *AnalyzerApp) OpenHistory() (*history.Store, error) {
	return history.Open(history.Options{
		Dir:    app.config.History.Dir,
		Logger: app.logger.WithFields(logging.Fields{"component": "history"}),
	})
}

// Output formats data with the configured formatter and writes it to
// the output file or stdout
func (app *AnalyzerApp) Output(data any) error {
	formatted, err := FormatOutput(app.outputFormat(), data)
	if err != nil {
		return err
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = app.stdout.Write(formatted)
	return err
}

// setupLogging configures logging based on context and config
func setupLogging(ctx *Context, config *configs.Config) logging.Logger {
	level := parseLevel(config.LogLevel)
	if ctx.Verbose || config.Verbose {
		level = logging.DebugLevel
	}
	if ctx.Quiet {
		level = logging.ErrorLevel
	}
	logging.SetLevel(level)

	return logging.WithFields(logging.Fields{
		"app": "barksync",
	})
}

func parseLevel(s string) logging.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logging.DebugLevel
	case "warn", "warning":
		return logging.WarnLevel
	case "error":
		return logging.ErrorLevel
	default:
		return logging.InfoLevel
	}
}

func (app *AnalyzerApp) outputFormat() string {
	if app.ctx.OutputFormat != "" {
		return app.ctx.OutputFormat
	}
	return app.config.OutputFormat
}

// FormatOutput renders data as json, yaml, table or csv; unknown formats
// fall back to json
func FormatOutput(format string, data any) ([]byte, error) {
	formatted, err := newFormatter(format).Format(data, true)
	if err != nil {
		return nil, fmt.Errorf("failed to format output data: %w", err)
	}
	return formatted, nil
}

func newFormatter(format string) output.Formatter {
	switch strings.ToLower(format) {
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// saveHistory stores every successful report, returning record ids by
// item index
func (app *AnalyzerApp) saveHistory(ctx context.Context, summary *batch.Summary) map[int]string {
	if !app.config.History.Enabled || app.ctx.NoHistory || summary.Successful == 0 {
		return nil
	}

	store, err := app.OpenHistory()
	if err != nil {
		app.logger.Error(err, "Failed to open history store", logging.Fields{
			"dir": app.config.History.Dir,
		})
		return nil
	}
	defer store.Close()

	ids := make(map[int]string)
	for _, item := range summary.Items {
		if !item.Succeeded() {
			continue
		}
		record, err := store.Save(ctx, item.Report)
		if err != nil {
			app.logger.Error(err, "Failed to save analysis to history", logging.Fields{
				"path": item.Path,
			})
			continue
		}
		ids[item.Index] = record.ID
	}
	return ids
}

// outputResults handles all result output
func (app *AnalyzerApp) outputResults(summary *batch.Summary, historyIDs map[int]string) error {
	// a single plain analysis prints just the result document
	if summary.Total == 1 && !app.ctx.Detailed && summary.Items[0].Succeeded() && app.outputFormat() != "table" && app.outputFormat() != "csv" {
		return app.Output(summary.Items[0].Report.Result)
	}

	outputData := map[string]any{
		"analysis_summary": cleanSummary(summary, app.ctx.Detailed, historyIDs),
		"timestamp":        time.Now(),
		"configuration": map[string]any{
			"backend":     app.engine.Backend(),
			"sample_rate": app.config.Audio.SampleRate,
			"frame_size":  app.config.Audio.FrameSize,
			"detailed":    app.ctx.Detailed,
		},
	}

	if app.ctx.Detailed && summary.Metrics != nil {
		outputData["metrics"] = summary.Metrics
	}

	return app.Output(outputData)
}

// cleanSummary flattens the batch summary for output
func cleanSummary(summary *batch.Summary, detailed bool, historyIDs map[int]string) map[string]any {
	results := make([]map[string]any, 0, len(summary.Items))
	for _, item := range summary.Items {
		entry := map[string]any{
			"path":       item.Path,
			"elapsed_ms": item.Elapsed.Milliseconds(),
		}
		if id, ok := historyIDs[item.Index]; ok {
			entry["history_id"] = id
		}

		if item.Succeeded() {
			entry["result"] = item.Report.Result
			if detailed {
				entry["features"] = item.Report.Features
				entry["source_info"] = item.Report.SourceInfo
				entry["reference"] = item.Report.Reference
				entry["timings_ms"] = map[string]any{
					"probe":     item.Report.Timings.Probe.Milliseconds(),
					"normalize": item.Report.Timings.Normalize.Milliseconds(),
					"load":      item.Report.Timings.Load.Milliseconds(),
					"spectral":  item.Report.Timings.Spectral.Milliseconds(),
					"features":  item.Report.Timings.Features.Milliseconds(),
					"total":     item.Report.Timings.Total.Milliseconds(),
				}
			}
		} else {
			entry["error"] = item.ErrorText
			if item.ErrorCode != "" {
				entry["error_code"] = item.ErrorCode
			}
		}

		results = append(results, entry)
	}

	return map[string]any{
		"start_time":     summary.StartTime,
		"end_time":       summary.EndTime,
		"total_duration": summary.TotalDuration.Seconds(),
		"total":          summary.Total,
		"successful":     summary.Successful,
		"failed":         summary.Failed,
		"results":        results,
	}
}

// collectMetrics sends per-analysis metrics to rootcollector
func (app *AnalyzerApp) collectMetrics(summary *batch.Summary) {
	if summary == nil {
		return
	}

	err := rootlogger.Configure(logger.LogOptions{
		Out:          app.config.Metrics.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		app.logger.Error(err, "Failed configuring metrics log writer", logging.Fields{
			"log_file": app.config.Metrics.LogFile,
		})
		return
	}

	for _, item := range summary.Items {
		if !item.Succeeded() {
			code := item.ErrorCode
			if code == "" {
				code = "UNKNOWN"
			}
			rootcollector.Metric("barksync.analysis.failed", 1, []string{"error:" + strings.ToLower(code)})
			continue
		}

		characteristics := item.Report.Result.AudioCharacteristics
		tags := []string{
			"bark_type:" + string(characteristics.Classification.BarkType),
			"emotional_state:" + string(characteristics.Classification.EmotionalState),
			"intensity:" + characteristics.Intensity.Description,
			"backend:" + app.engine.Backend(),
		}

		rootcollector.Metric("barksync.analysis.duration.milliseconds", item.Elapsed.Milliseconds(), tags)
		if item.Report.Features != nil {
			rootcollector.Metric("barksync.analysis.fundamental.hz", int64(item.Report.Features.FundamentalFrequency), tags)
		}
	}

	rootcollector.Metric("barksync.batch.files", int64(summary.Total), []string{
		fmt.Sprintf("failed:%t", summary.Failed > 0),
	})
}

// writeToFile writes data to the specified output file
func (app *AnalyzerApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return common.NewIOError(dir, "failed to create output directory", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return common.NewIOError(app.ctx.OutputFile, "failed to write output file", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}
