// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDataDir returns the directory holding the local database and any
// temporary scan images.
func DefaultDataDir() string {
	return ExpandPath("~/.local/share/chitieu")
}

// DefaultDatabasePath returns the default location of the local SQLite store.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), "chitieu.db")
}

// DefaultConfigPath returns the default location of the config file.
func DefaultConfigPath() string {
	return ExpandPath("~/.config/chitieu/config.yaml")
}

// EnsureDir creates the directory for the given file path if it does not
// already exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
