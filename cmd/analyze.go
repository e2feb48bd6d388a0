package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/barksync-analyzer/internal/app"
)

var (
	analyzeOutputFile   string
	analyzeDetailed     bool
	analyzeRemoveSource bool
	analyzeNoHistory    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file...>",
	Short: "Classify dog vocalizations in audio files",
	Long: `Run the vocalization pipeline on one or more audio files.

Files are analyzed concurrently up to batch.max_concurrency. A failure in one
file does not stop the others; the command fails only when every file fails.
A single file without --detailed prints just the result document.

Examples:
  # Analyze one recording
  barksync analyze bark.m4a

  # Analyze a folder of recordings with features and timings, as YAML
  barksync analyze --detailed -o yaml recordings/*.wav

  # Write results to a file and delete the uploads afterwards
  barksync analyze --output-file out/result.json --remove-source upload-*.webm`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "",
		"write results to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeDetailed, "detailed", false,
		"include features, source info, reference profiles and batch metrics")
	analyzeCmd.Flags().BoolVar(&analyzeRemoveSource, "remove-source", false,
		"delete each input file after it has been analyzed")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false,
		"do not save results to history even when enabled")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analyzer, err := app.NewAnalyzerApp(newAppContext(&app.Context{
		OutputFile:   analyzeOutputFile,
		Detailed:     analyzeDetailed,
		RemoveSource: analyzeRemoveSource,
		NoHistory:    analyzeNoHistory,
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return analyzer.Run(ctx, args)
}

// newAppContext fills the global flag values into ctx
func newAppContext(ctx *app.Context) *app.Context {
	ctx.ConfigFile = configFile
	ctx.OutputFormat = outputFormat
	ctx.LogLevel = logLevel
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	return ctx
}
