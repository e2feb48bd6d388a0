package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/barksync-analyzer/configs"
	"github.com/RyanBlaney/barksync-analyzer/internal/app"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/transcode"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration and BARKSYNC_ environment variables
are being picked up.

Examples:
  # Test with default config file
  barksync config-test

  # Test with specific config file
  barksync --config /path/to/barksync.yaml config-test`,
	RunE: runConfigTest,
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and validate configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write an example configuration file with every default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.GenerateExampleConfig(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s✅ Example configuration written to: %s%s\n", ColorGreen, args[0], ColorReset)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.ValidateConfigFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s✅ Configuration is valid: %s%s\n", ColorGreen, args[0], ColorReset)
		fmt.Printf("   - Sample rate: %d Hz, frame size: %d\n", config.Audio.SampleRate, config.Audio.FrameSize)
		fmt.Printf("   - Decoder backend: %s\n", config.Decoder.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configTestCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configValidateCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("BARKSYNC CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)

	printSection("AUDIO ANALYSIS")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Audio.SampleRate))
	printKeyValue("Frame Size", fmt.Sprintf("%d samples", config.Audio.FrameSize))
	printKeyValue("Fundamental Band", fmt.Sprintf("%.0f - %.0f Hz", config.Audio.MinFundamentalHz, config.Audio.MaxFundamentalHz))

	printSection("DECODER")
	printKeyValue("Backend", config.Decoder.Backend)
	printKeyValue("FFmpeg Path", config.Decoder.FFmpegPath)
	printKeyValue("FFprobe Path", config.Decoder.FFprobePath)
	printKeyValue("FFmpeg Available", fmt.Sprintf("%t", transcode.FFmpegAvailable(config.Decoder.FFmpegPath, config.Decoder.FFprobePath)))
	printKeyValue("Scratch Dir", config.Decoder.ScratchDir)
	printKeyValue("Scratch Prefix", config.Decoder.ScratchPrefix)

	printSection("INTAKE")
	printKeyValue("Max File Size", fmt.Sprintf("%d bytes", config.Intake.MaxFileSize))
	printKeyValue("Allowed Extensions", strings.Join(config.Intake.AllowedExtensions, ", "))
	printKeyValue("Allowed Types", fmt.Sprintf("%d", len(config.Intake.AllowedTypes)))
	for _, t := range config.Intake.AllowedTypes {
		printKeyValue("  "+t, "")
	}

	printSection("BATCH")
	printKeyValue("Max Concurrency", fmt.Sprintf("%d", config.Batch.MaxConcurrency))
	printKeyValue("Per-file Timeout", config.Batch.Timeout.String())

	printSection("HISTORY")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.History.Enabled))
	printKeyValue("Dir", config.History.Dir)

	printSection("METRICS")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Log File", config.Metrics.LogFile)

	fmt.Println()
	if err := configs.ValidateConfig(config); err != nil {
		fmt.Println(ColorRed + strings.Repeat("-", 80))
		fmt.Printf("CONFIGURATION INVALID: %v\n", err)
		fmt.Println(strings.Repeat("=", 80) + ColorReset)
		return err
	}

	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", configFileUsed())
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}
