package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration shared by
// every tool in this repository.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway" envconfig:"GATEWAY"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Pull    PullConfig    `yaml:"pull" envconfig:"PULL"`
}

// GatewayConfig describes how to reach the refdata gateway that fronts
// the vendor Desktop/Server API. Defaults live in Default(), not in
// struct tags: envconfig must leave fields untouched when the variable
// is unset so file values survive the env pass.
type GatewayConfig struct {
	Host         string        `yaml:"host" envconfig:"HOST"`
	Port         int           `yaml:"port" envconfig:"PORT"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PullConfig carries defaults common to the data-pull tools. Pace is the
// minimum spacing between consecutive per-row enrichment calls; the
// vendor throttles aggressive reference-data traffic.
type PullConfig struct {
	Pace          time.Duration `yaml:"pace" envconfig:"PACE"`
	Currency      string        `yaml:"currency" envconfig:"CURRENCY"`
	SumCount      int           `yaml:"sum_count" envconfig:"SUM_COUNT"`
	MaxDataPoints int           `yaml:"max_data_points" envconfig:"MAX_DATA_POINTS"`
}

// Load builds configuration in three layers: built-in defaults, then an
// optional config.yaml in the working directory, then environment
// variables (BLP_ prefix). Each layer only overrides what it actually
// sets, so a file value survives unless the matching variable is set.
func Load() (*Config, error) {
	cfg := *Default()

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("BLP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port: %d", c.Gateway.Port)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive")
	}
	if c.Pull.Pace < 0 {
		return fmt.Errorf("pull pace must not be negative")
	}
	if c.Pull.SumCount <= 0 {
		return fmt.Errorf("pull sum count must be positive")
	}

	// JSON is the only supported log format; dual output unless told otherwise.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/blpcli.log"
	}

	return nil
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Default returns default configuration, used when no env or file
// configuration is available.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host:         "localhost",
			Port:         8194,
			Timeout:      30 * time.Second,
			MaxRetries:   3,
			RetryBackoff: time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/blpcli.log",
		},
		Pull: PullConfig{
			Pace:          50 * time.Millisecond,
			Currency:      "USD",
			SumCount:      20,
			MaxDataPoints: 1_000_000,
		},
	}
}
