// Package config loads the settings of the memoprop command from the
// environment and optional .env files.
package config

import (
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel    = "MEMOPROP_LOG_LEVEL"
	EnvRecordPath  = "MEMOPROP_RECORD_PATH"
	EnvMonitorPort = "MEMOPROP_MONITOR_PORT"
)

// DefaultLogLevel is used when EnvLogLevel is not set.
const DefaultLogLevel = "error"

// Config holds the settings of the memoprop command.
type Config struct {
	LogLevel string

	// RecordPath is where access events are recorded. Empty disables
	// recording.
	RecordPath string

	// MonitorPort is the port of the monitoring server. 0 picks a random
	// port.
	MonitorPort int
}

// Load reads the given .env files, or ".env" when none is given, into the
// environment and returns the resulting configuration. Missing files are
// skipped. Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "load %s", f)
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the environment variables alone.
func FromEnv() (Config, error) {
	c := Config{
		LogLevel:   DefaultLogLevel,
		RecordPath: os.Getenv(EnvRecordPath),
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}

	if port := os.Getenv(EnvMonitorPort); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return Config{}, errors.Errorf("invalid %s %q", EnvMonitorPort, port)
		}

		c.MonitorPort = n
	}

	return c, nil
}
