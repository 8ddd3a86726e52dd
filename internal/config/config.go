package config

import (
	"fmt"
	"os"

	"github.com/churnlab/trainpipe/internal/errors"
	"github.com/churnlab/trainpipe/internal/observability"
)

// LoggerName is the name records of the entry point are logged under
const LoggerName = "pipelines.training_pipeline"

// Config represents the complete application configuration
type Config struct {
	// EntryPoint is the binary the search path is computed from
	EntryPoint    string
	LoggerName    string
	Observability ObservabilityConfig
}

// ObservabilityConfig configures logging
type ObservabilityConfig struct {
	LogLevel string
}

// Load builds the configuration. The entry point is always the running
// executable. TRAINPIPE_LOG_LEVEL may raise or lower the log level; names that
// are not recognised fall back to info and never fail the run.
func Load() (*Config, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	logLevel := getEnv("TRAINPIPE_LOG_LEVEL", "info")
	if !observability.ValidLevel(logLevel) {
		logLevel = "info"
	}

	cfg := &Config{
		EntryPoint: exe,
		LoggerName: LoggerName,
		Observability: ObservabilityConfig{
			LogLevel: logLevel,
		},
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.EntryPoint == "" {
		return errors.NewPermanentf("entry point path is required")
	}

	if c.LoggerName == "" {
		return errors.NewPermanentf("logger name is required")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
