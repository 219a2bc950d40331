// Package config provides configuration for the noema-scan tooling.
// It handles loading, saving, and validating configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/armin976/noema-scan/internal/gguf"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = "noema-scan.yaml"

// Config represents the complete application configuration.
type Config struct {
	Scan ScanConfig `yaml:"scan"`
	Log  LogConfig  `yaml:"log"`
}

// ScanConfig contains hardening limits for the forward metadata scan.
type ScanConfig struct {
	// MaxSkipBytes caps the cumulative bytes a single scan may seek past.
	// 0 means the built-in default (4 GiB).
	MaxSkipBytes uint64 `yaml:"max_skip_bytes"`
}

// Limits converts the scan settings into gguf scan limits.
func (c ScanConfig) Limits() gguf.Limits {
	if c.MaxSkipBytes == 0 {
		return gguf.DefaultLimits()
	}
	return gguf.Limits{MaxSkipBytes: c.MaxSkipBytes}
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level     string `yaml:"level"`     // debug, info, warn, error
	Format    string `yaml:"format"`    // text or json
	Output    string `yaml:"output"`    // stdout, file, or both
	Directory string `yaml:"directory"` // log directory when output includes file
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxSkipBytes: gguf.DefaultMaxSkipBytes,
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			Output:    "stdout",
			Directory: "logs",
		},
	}
}

// Load reads the configuration from path, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "", "stdout", "file", "both":
	default:
		return fmt.Errorf("invalid log output %q", c.Log.Output)
	}
	return nil
}
