package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogDir        = "/var/log/nginx/"
	DefaultPattern       = "access.log*"
	DefaultWorkers       = 1
	DefaultBurst         = 50
	DefaultPreviewLength = 50
)

// Config represents the main configuration
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Logging     LoggingConfig     `yaml:"logging"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Output      OutputConfig      `yaml:"output"`
}

// ScanConfig selects the log files to scan
type ScanConfig struct {
	LogDir  string `yaml:"log_dir"`
	Pattern string `yaml:"pattern"` // doublestar glob relative to log_dir
	Workers int    `yaml:"workers"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// DiagnosticsConfig throttles the skipped-line diagnostics
type DiagnosticsConfig struct {
	RateLimit     int `yaml:"rate_limit"` // per second, 0 = unlimited
	Burst         int `yaml:"burst"`
	PreviewLength int `yaml:"preview_length"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OutputConfig defines report output
type OutputConfig struct {
	Format string `yaml:"format"` // text or json
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expandedData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified configuration
func (c *Config) applyDefaults() {
	if c.Scan.LogDir == "" {
		c.Scan.LogDir = DefaultLogDir
	}
	if c.Scan.Pattern == "" {
		c.Scan.Pattern = DefaultPattern
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = DefaultWorkers
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	if c.Diagnostics.Burst == 0 {
		c.Diagnostics.Burst = DefaultBurst
	}
	if c.Diagnostics.PreviewLength == 0 {
		c.Diagnostics.PreviewLength = DefaultPreviewLength
	}

	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan workers must be at least 1, got %d", c.Scan.Workers)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true, "console": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Diagnostics.RateLimit < 0 {
		return errors.New("diagnostics rate_limit must not be negative")
	}
	if c.Diagnostics.Burst < 0 {
		return errors.New("diagnostics burst must not be negative")
	}
	if c.Diagnostics.PreviewLength < 0 {
		return errors.New("diagnostics preview_length must not be negative")
	}

	validOutputFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validOutputFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}

	return nil
}

// LoadOrDefault loads configuration from path, falling back to defaults
// when the file does not exist. Any other load failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return nil, err
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
