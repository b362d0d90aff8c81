// Package logger provides the zerolog setup shared by the server and jobs.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a structured logger. In local development it writes
// human-readable console output; everywhere else it emits JSON for the log
// collector. Level comes from LOG_LEVEL (default info).
func New(service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if os.Getenv("ENVIRONMENT") == "local" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(parseLevel(os.Getenv("LOG_LEVEL"))).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// NewWithWriter creates a logger with a custom writer, used by tests to
// capture output.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
