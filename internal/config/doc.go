// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.duke/duke.toml or OS-specific config directory)
// 3. Project config file (duke.toml or .duke.toml in the project root)
// 4. A .env file in the project root (never overrides the real environment)
// 5. Environment variables (DUKE_*)
// 6. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.duke/duke.toml (preferred)
// - Windows: %APPDATA%\duke\duke.toml
// - macOS: ~/Library/Application Support/duke/duke.toml
// - Linux/BSD: $XDG_CONFIG_HOME/duke/duke.toml or ~/.config/duke/duke.toml
//
// Project-level config locations (overrides user config):
// - ./duke.toml (preferred)
// - ./.duke.toml
package config
