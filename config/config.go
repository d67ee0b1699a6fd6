// Package config loads botflow settings from a YAML file: the default
// retry policy, failure handling, logging level, and history backend.
// It is consumed by application code that wires flows from configuration
// instead of hard-coding options.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/petrijr/botflow/pkg/api"
)

// Config holds the botflow configuration details.
type Config struct {
	Flow    FlowConfig    `yaml:"flow"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// FlowConfig holds execution defaults applied to flows built from this
// configuration.
type FlowConfig struct {
	// StopOnFailure defaults to true when omitted.
	StopOnFailure *bool        `yaml:"stop_on_failure"`
	Retry         *RetryConfig `yaml:"retry"`
}

// RetryConfig describes the default retry policy. Strategy is "fixed" or
// "exponential"; wait fields are in seconds, mirroring the policy types.
type RetryConfig struct {
	Strategy       string  `yaml:"strategy"`
	MaxAttempts    int     `yaml:"max_attempts"`
	WaitSeconds    float64 `yaml:"wait_seconds"`
	BaseSeconds    float64 `yaml:"base_seconds"`
	MaxWaitSeconds float64 `yaml:"max_wait_seconds"`
	Jitter         bool    `yaml:"jitter"`
}

// LoggingConfig holds the logging details.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `yaml:"level"`
}

// HistoryConfig holds the run-history backend details.
type HistoryConfig struct {
	// Backend is one of "", "memory", "sqlite", "redis".
	Backend string `yaml:"backend"`
	// Path is the SQLite database path.
	Path string `yaml:"path"`
	// Addr is the Redis address.
	Addr string `yaml:"addr"`
}

// Load reads and parses the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if r := c.Flow.Retry; r != nil {
		switch r.Strategy {
		case "fixed", "exponential":
		default:
			return fmt.Errorf("config: unknown retry strategy %q", r.Strategy)
		}
		if r.MaxAttempts < 1 {
			return fmt.Errorf("config: retry max_attempts must be at least 1, got %d", r.MaxAttempts)
		}
	}
	switch c.History.Backend {
	case "", "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown history backend %q", c.History.Backend)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// StopOnFailure reports whether flows should abort on the first failed
// step. Defaults to true.
func (c *Config) StopOnFailure() bool {
	if c.Flow.StopOnFailure == nil {
		return true
	}
	return *c.Flow.StopOnFailure
}

// RetryPolicy builds the configured default retry policy, or nil when the
// configuration declares none.
func (c *Config) RetryPolicy() api.RetryPolicy {
	r := c.Flow.Retry
	if r == nil {
		return nil
	}
	if r.Strategy == "fixed" {
		return api.FixedDelay{
			MaxAttempts: r.MaxAttempts,
			Wait:        seconds(r.WaitSeconds),
		}
	}
	return api.ExponentialBackoff{
		MaxAttempts: r.MaxAttempts,
		Base:        seconds(r.BaseSeconds),
		MaxWait:     seconds(r.MaxWaitSeconds),
		Jitter:      r.Jitter,
	}
}

// SlogLevel maps the configured logging level onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown logging level %q", c.Logging.Level)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
