// Package logging builds the process slog handler from environment variables
// and command-line overrides.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogAddSource = "LOG_ADD_SOURCE"

	FormatJSON = "json"
	FormatText = "text"
)

// Config holds the logging configuration.
type Config struct {
	Level     slog.Level
	Format    string
	AddSource bool
}

// LoadConfig reads LOG_LEVEL, LOG_FORMAT and LOG_ADD_SOURCE over the
// defaults (info, text, no source).
func LoadConfig() Config {
	cfg := Config{Level: slog.LevelInfo, Format: FormatText}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Level = ParseLevel(level)
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Format = strings.ToLower(format)
	}
	if addSource := os.Getenv(EnvLogAddSource); addSource != "" {
		cfg.AddSource = strings.EqualFold(addSource, "true")
	}
	return cfg
}

// WithFlags applies non-empty flag values on top of cfg.
func (cfg Config) WithFlags(level, format string) Config {
	if level != "" {
		cfg.Level = ParseLevel(level)
	}
	if format != "" {
		cfg.Format = strings.ToLower(format)
	}
	return cfg
}

// ParseLevel maps a level name to slog.Level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler creates the handler described by cfg writing to w.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	if cfg.Format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Setup installs a logger built from cfg as the slog default and returns it.
func Setup(w io.Writer, cfg Config) *slog.Logger {
	logger := slog.New(NewHandler(w, cfg))
	slog.SetDefault(logger)
	return logger
}
