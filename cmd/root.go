package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/barksync-analyzer/configs"
)

const envPrefix = "BARKSYNC"

var (
	configFile   string
	verbose      bool
	quiet        bool
	logLevel     string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "barksync",
	Short: "BarkSync dog vocalization analyzer",
	Long: `Analyze short recordings of dog vocalizations.

Each recording is normalized to mono PCM, reduced to a spectrum and a few
acoustic features, and classified with fixed rules into a bark type
(growl, whine, bark) and an emotional state (warning, anxious, excited,
alert). The result includes a one-sentence interpretation.

Key features:
- Input in any container ffmpeg understands (native WAV, MP3 and Ogg fallback)
- Deterministic rule-based classification
- Concurrent batch analysis of many files
- JSON, YAML, table and CSV output
- Optional local history of past analyses`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/barksync/barksync.yaml)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"output format (json, yaml, table, csv)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "barksync"))
		viper.AddConfigPath("/etc/barksync")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("barksync")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each command-local cobra flag to its environment variable
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		command := strings.ReplaceAll(cmd.Name(), "-", "_")
		flag := strings.ReplaceAll(f.Name, "-", "_")
		key := command + "." + flag

		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(command)+"_"+strings.ToUpper(flag)); err != nil {
			lastErr = err
			return
		}

		// Apply the environment value to the flag when the flag is not set
		if !f.Changed && v.IsSet(key) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
				lastErr = err
			}
		}
	})

	return lastErr
}

// configFileUsed names the config file viper loaded
func configFileUsed() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "(defaults)"
}
