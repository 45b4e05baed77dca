package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagDataFile      = "data-file"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagLogTimestamps = "log-timestamps"
	FlagLogCaller     = "log-caller"
	FlagLogFile       = "log-file"
)

var flagToField = map[string]string{
	FlagDataFile:      "data_file",
	FlagLogLevel:      "log_level",
	FlagLogFormat:     "log_format",
	FlagLogTimestamps: "log_timestamps",
	FlagLogCaller:     "log_caller",
	FlagLogFile:       "log_file",
}

// RegisterFlags defines the config flags on fs. Defaults shown in usage are
// the built-in defaults; values from files and the environment are only
// replaced by flags the user actually sets.
func RegisterFlags(fs *pflag.FlagSet) {
	if fs.Lookup(FlagDataFile) != nil {
		return
	}
	fs.StringP(FlagDataFile, "f", DefaultDataFile, "Path to the task data file")
	fs.String(FlagLogLevel, DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, DefaultLogFormat, "Log format (text, json, logfmt)")
	fs.Bool(FlagLogTimestamps, false, "Show timestamps in logs")
	fs.Bool(FlagLogCaller, false, "Show caller location in logs")
	fs.String(FlagLogFile, "", "Write logs to this file instead of stderr")
}

// parseFlags registers and parses CLI flags, applying only the ones that
// were set. If sources is non-nil, it tracks the source of each value.
func parseFlags(cfg *Config, fs *pflag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = pflag.NewFlagSet("duke", pflag.ContinueOnError)
	}
	RegisterFlags(fs)

	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return err
		}
	}

	var err error
	fs.Visit(func(f *pflag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok || err != nil {
			return
		}
		switch f.Name {
		case FlagDataFile:
			cfg.DataFile, err = fs.GetString(f.Name)
		case FlagLogLevel:
			cfg.LogLevel, err = fs.GetString(f.Name)
		case FlagLogFormat:
			cfg.LogFormat, err = fs.GetString(f.Name)
		case FlagLogTimestamps:
			cfg.LogTimestamps, err = fs.GetBool(f.Name)
		case FlagLogCaller:
			cfg.LogCaller, err = fs.GetBool(f.Name)
		case FlagLogFile:
			cfg.LogFile, err = fs.GetString(f.Name)
		}
		if sources != nil {
			sources[field] = SourceFlag
		}
	})
	return err
}
