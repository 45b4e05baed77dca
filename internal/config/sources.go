package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands environment variables and a leading ~ in paths.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded != "~" && !strings.HasPrefix(expanded, "~/") &&
		!(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}

// SortedFields returns the tracked field names in display order.
func (cws *ConfigWithSources) SortedFields() []string {
	return configFields()
}

// Value returns the effective value of a tracked field formatted for display.
func (cws *ConfigWithSources) Value(field string) string {
	cfg := cws.Config
	switch field {
	case "data_file":
		return cfg.DataFile
	case "log_level":
		return cfg.LogLevel
	case "log_format":
		return cfg.LogFormat
	case "log_timestamps":
		return formatBool(cfg.LogTimestamps)
	case "log_caller":
		return formatBool(cfg.LogCaller)
	case "log_file":
		if cfg.LogFile == "" {
			return "(stderr)"
		}
		return cfg.LogFile
	}
	return ""
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
