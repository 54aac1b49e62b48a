// Package logging builds the slog loggers prcomment writes to CI logs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Level represents a structured log level used by prcomment.
type Level slog.Level

const (
	// LevelDebug represents the debug logging level.
	LevelDebug Level = Level(slog.LevelDebug)
	// LevelInfo represents the informational logging level.
	LevelInfo Level = Level(slog.LevelInfo)
	// LevelWarn represents the warning logging level.
	LevelWarn Level = Level(slog.LevelWarn)
	// LevelError represents the error logging level.
	LevelError Level = Level(slog.LevelError)
)

// ParseLevel converts a textual log level into a Level value.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the lower-case name of the level.
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// NewLogger constructs a tint-backed slog.Logger reading the run environment
// from the process.
func NewLogger(w io.Writer, level Level) *slog.Logger {
	return New(w, level, os.Getenv)
}

// New constructs a tint-backed slog.Logger. RUNNER_DEBUG=1 (step debug
// logging in Actions) lowers the level to debug, NO_COLOR disables colors and
// GITHUB_ACTIONS=true drops timestamps since the runner prefixes its own.
func New(w io.Writer, level Level, getenv func(string) string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("RUNNER_DEBUG") == "1" && level > LevelDebug {
		level = LevelDebug
	}

	opts := &tint.Options{
		Level:   slog.Level(level),
		NoColor: getenv("NO_COLOR") != "",
	}
	if strings.EqualFold(strings.TrimSpace(getenv("GITHUB_ACTIONS")), "true") {
		opts.ReplaceAttr = dropTime
	}
	return slog.New(tint.NewHandler(w, opts))
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
