package config

import (
	"os"
	"strings"
)

// Environment variable names.
const (
	EnvDataFile      = "DUKE_DATA_FILE"
	EnvLogLevel      = "DUKE_LOG_LEVEL"
	EnvLogFormat     = "DUKE_LOG_FORMAT"
	EnvLogTimestamps = "DUKE_LOG_TIMESTAMPS"
	EnvLogCaller     = "DUKE_LOG_CALLER"
	EnvLogFile       = "DUKE_LOG_FILE"
)

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvDataFile); v != "" {
		cfg.DataFile = v
		mark("data_file")
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		mark("log_level")
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		mark("log_format")
	}
	if v := os.Getenv(EnvLogTimestamps); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		mark("log_timestamps")
	}
	if v := os.Getenv(EnvLogCaller); v != "" {
		cfg.LogCaller = boolFromString(v)
		mark("log_caller")
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
		mark("log_file")
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
