// Package config holds runtime configuration for validflux.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration options
type Config struct {
	// Version information (set by ldflags via main)
	Version   string
	BuildTime string
	GitCommit string

	// Output options
	NoColor      bool
	Debug        bool
	Quiet        bool
	LogLevel     string
	LogFormat    string
	OutputFormat string // "table" or "json"
}

// New creates a new configuration with default values, honoring
// environment overrides.
func New() *Config {
	return &Config{
		LogLevel:     getEnvString("VALIDFLUX_LOG_LEVEL", "info"),
		LogFormat:    getEnvString("VALIDFLUX_LOG_FORMAT", "text"),
		OutputFormat: getEnvString("VALIDFLUX_FORMAT", "table"),
		Debug:        getEnvBool("VALIDFLUX_DEBUG", false),
		// NO_COLOR is the conventional cross-tool opt-out
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// Helper functions
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
