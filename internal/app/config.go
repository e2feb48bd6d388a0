package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/barksync-analyzer/configs"
)

// loadConfigFromFile reads a YAML (or JSON) configuration file on top of
// the defaults
func loadConfigFromFile(filePath string) (*configs.Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := configs.GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return config, nil
}

// loadAndMergeConfig loads configuration from viper and applies CLI flags
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	mergeConfig(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// mergeConfig overrides config values with CLI flags
func mergeConfig(config *configs.Config, ctx *Context) {
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.LogLevel != "" {
		config.LogLevel = ctx.LogLevel
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "json"
	}
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateConfigFile loads and validates a configuration file
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	config, err := loadConfigFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
