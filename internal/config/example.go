package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# duke configuration file
# Values can be overridden by DUKE_* environment variables or CLI flags.

# Task data file (relative to the project root, supports ~ expansion)
data_file = "data/duke.txt"

# Log level: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

# Show timestamps and caller location in logs
log_timestamps = false
log_caller = false

# Write logs to a file instead of stderr
# log_file = "~/.duke/duke.log"
`
}
