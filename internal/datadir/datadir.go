// Package datadir provides constants and helpers for the duke data directory.
package datadir

import "path/filepath"

const (
	// Dir is the name of the data directory, relative to the project root.
	Dir = "data"

	// DataFile is the task file name (inside Dir).
	DataFile = "duke.txt"

	// ConfigFile is the config file name, both in the project root and
	// in the user config directory.
	ConfigFile = "duke.toml"

	// HiddenConfigFile is the alternate project config file name.
	HiddenConfigFile = ".duke.toml"

	// UserDir is the per-user directory under $HOME.
	UserDir = ".duke"

	// EnvFile is the dotenv file read from the project root.
	EnvFile = ".env"
)

// DataPath returns the full path to the task file within a project root.
func DataPath(root string) string {
	return joinPath(root, Dir, DataFile)
}

// UserConfigPath returns ~/.duke/duke.toml for the given home directory.
func UserConfigPath(home string) string {
	return filepath.Join(home, UserDir, ConfigFile)
}

func joinPath(root string, elem ...string) string {
	if root == "." || root == "" {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{root}, elem...)...)
}
