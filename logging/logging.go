// Package logging builds the zerolog loggers used by the memoprop tools.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the named level. An empty level
// means "error".
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// NewConsole is like New but writes human-readable lines.
func NewConsole(level string, w io.Writer, noColor bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel accepts the zerolog level names, case-insensitively.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.ErrorLevel, nil
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}

	return lvl, nil
}
