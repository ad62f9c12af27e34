// Package settings loads process settings from the environment.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/farcloser/primordium/fault"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvEngine  = "SPECTAG_ENGINE"
	EnvTimeout = "SPECTAG_TIMEOUT"
	EnvConfig  = "SPECTAG_CONFIG"
	EnvWorkers = "SPECTAG_WORKERS"
	EnvFile    = "SPECTAG_ENV_FILE"
)

// DefaultEnvFile is read from the working directory unless SPECTAG_ENV_FILE names another file.
const DefaultEnvFile = ".env"

// Path returns the env file to load.
func Path() string {
	if path := os.Getenv(EnvFile); path != "" {
		return path
	}

	return DefaultEnvFile
}

// Load adds the variables of an env file to the process environment without overriding
// variables already set. A missing file is not an error.
func Load(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("settings.Load", "file", path, "stage", "missing")

			return nil
		}

		return fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, path, err)
	}

	slog.Debug("settings.Load", "file", path, "stage", "loaded")

	return nil
}
