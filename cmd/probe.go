package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/barksync-analyzer/internal/app"
)

var probeTimeout time.Duration

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show container information for an audio file",
	Long: `Probe an audio file without analyzing it.

Prints the detected container, codec, sample rate, channel count and
duration as seen by the active decoder backend. Use -o to get the same
information as JSON, YAML, table or CSV.

Examples:
  barksync probe bark.m4a
  barksync probe -o json bark.webm`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second,
		"maximum time to spend probing")
}

func runProbe(cmd *cobra.Command, args []string) error {
	analyzer, err := app.NewAnalyzerApp(newAppContext(&app.Context{}))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	info, err := analyzer.Probe(ctx, args[0])
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	if outputFormat != "" {
		return analyzer.Output(info)
	}

	printHeader("Probe", info.Path)
	printKeyValue("Backend", info.Backend)
	printKeyValue("Format", info.Format)
	if info.Codec != "" {
		printKeyValue("Codec", info.Codec)
	}
	if info.SampleRate > 0 {
		printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", info.SampleRate))
	}
	if info.Channels > 0 {
		printKeyValue("Channels", fmt.Sprintf("%d", info.Channels))
	}
	printKeyValue("Duration", fmt.Sprintf("%.3fs", info.Duration))
	printKeyValue("Size", fmt.Sprintf("%d bytes", info.SizeBytes))

	return nil
}
