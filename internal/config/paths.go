package config

import (
	"os"
	"path/filepath"
)

const appName = "todolist"

// DefaultPath is where the config file is looked up when --config is not set.
func DefaultPath() string {
	if p := os.Getenv("TODOLIST_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// DefaultDataDir is where the list and the log file live.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "."+appName)
}
