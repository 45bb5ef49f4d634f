// Package logger configures the process-wide slog logger. Every layer of
// the service logs through *slog.Logger; this package only decides where
// those records go and how they are rendered.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	// FormatJSON renders one JSON object per line, for production.
	FormatJSON Format = "json"
	// FormatText renders human-readable key=value lines, for development.
	FormatText Format = "text"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, or error.
	Level string

	// Format is json or text. Anything else falls back to json.
	Format Format

	// Service is attached to every record as the "service" attribute.
	Service string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  FormatJSON,
		Service: "writing-coach",
	}
}

// ParseLevel maps a level name onto a slog.Level. Unknown names read as info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds a logger writing to stderr per the config.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a logger writing to w per the config.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	log := slog.New(handler)
	if cfg.Service != "" {
		log = log.With("service", cfg.Service)
	}
	return log
}
