// Package logger builds the zerolog loggers used across the segmenter.
//
// Every long-lived component receives a zerolog.Logger and tags its events
// with a "component" field through Component. Logs go to stderr; stdout is
// reserved for results and the JSON-RPC protocol.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the given level, with timestamps.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Console returns a human-readable logger writing to w.
func Console(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, NoColor: true}, level)
}

// Component returns a child of l that tags every event with name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// ParseLevel maps a level name ("debug", "info", "warn", "error", ...) to a
// zerolog level. Empty or unknown names give zerolog.InfoLevel.
func ParseLevel(name string) zerolog.Level {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
