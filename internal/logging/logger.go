package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	envLogLevel  = "RETAIN_LOG_LEVEL"
	envLogFormat = "RETAIN_LOG_FORMAT"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string

	// File, when set, sends logs to a size-rotated file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// New creates a zerolog logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	return NewWriter(cfg, os.Stderr)
}

// NewWriter creates a zerolog logger writing to w with the given configuration.
func NewWriter(cfg Config, w io.Writer) zerolog.Logger {
	output := w
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// Open creates a logger honouring cfg.File. The returned closer must be
// closed when the logger is no longer used; it is a no-op for stderr.
func Open(cfg Config) (zerolog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(cfg), io.NopCloser(nil), nil
	}
	rotator, err := NewRotator(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays, cfg.Compress)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return NewWriter(cfg, rotator), rotator, nil
}

// ParseLevel converts "trace", "debug", "info", "warn" or "error" to a level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// NewFromEnv creates a logger based on environment variables
// RETAIN_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// RETAIN_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	return New(ApplyEnv(DefaultConfig()))
}

// ApplyEnv overlays RETAIN_LOG_LEVEL and RETAIN_LOG_FORMAT onto cfg.
// Unrecognised values are ignored.
func ApplyEnv(cfg Config) Config {
	if level := os.Getenv(envLogLevel); level != "" {
		if l, err := ParseLevel(level); err == nil {
			cfg.Level = l
		}
	}

	if format := os.Getenv(envLogFormat); format != "" {
		switch format {
		case "json", "console":
			cfg.Format = format
		}
	}
	return cfg
}
