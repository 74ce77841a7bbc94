// Package logger builds the zerolog loggers used across the checker.
// Output always goes to stderr unless a writer is given; stdout is reserved
// for the terminal summary.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

const envPrefix = "BST_LICENSE_CHECKER_LOG_"

// Options configures the logger.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// FromEnv fills unset fields from BST_LICENSE_CHECKER_LOG_LEVEL and
// BST_LICENSE_CHECKER_LOG_FORMAT. Explicit values win.
func (o Options) FromEnv() Options {
	if o.Level == "" {
		o.Level = os.Getenv(envPrefix + "LEVEL")
	}
	if o.Format == "" {
		o.Format = os.Getenv(envPrefix + "FORMAT")
	}
	return o
}

// New builds a root logger. Format "json" emits one object per line,
// anything else uses the human console writer.
func New(opt Options) Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(strings.TrimSpace(opt.Format)) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() Logger { return zerolog.Nop() }

// Named returns a child logger with a component field.
func Named(l Logger, component string) Logger {
	if component == "" {
		return l
	}
	return l.With().Str("component", component).Logger()
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
