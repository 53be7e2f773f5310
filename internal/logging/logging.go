// Package logging configures the application's zerolog logger.
//
// Components receive a zerolog.Logger value at construction and attach
// their own contextual fields. Messages below the configured level are
// silently discarded.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel parses a log level string into a zerolog level.
// Returns InfoLevel if the string is not recognized.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger writing human-readable console output at the given
// level. If output is nil, os.Stderr is used.
func New(levelStr string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	writer := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(writer).
		Level(ParseLevel(levelStr)).
		With().
		Timestamp().
		Logger()
}
