// Package logger sets up structured logging on log/slog. The CLI verbosity
// levels follow the classic five names (DEBUG through CRITICAL); CRITICAL is
// mapped onto a custom slog level above Error.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/stocklens/stocklens/internal/config"
)

// LevelCritical sits above slog.LevelError and corresponds to the CRITICAL
// verbosity: only failures that abort the run are reported.
const LevelCritical = slog.LevelError + 4

// ParseLevel maps a verbosity name onto a slog level. Accepted names are
// DEBUG, INFO, WARNING (or WARN), ERROR and CRITICAL, case-insensitive.
func ParseLevel(verbosity string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(verbosity)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("invalid verbosity level %q: choose from DEBUG, INFO, WARNING, ERROR, CRITICAL", verbosity)
	}
}

// New builds a logger from the logging configuration. The returned closer
// releases the log writer and must be called on shutdown; it is a no-op for
// stdout/stderr output.
func New(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	writer, closer, err := newWriter(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelName(l))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

// levelName renders levels uppercase, with the custom critical level named.
func levelName(l slog.Level) string {
	if l >= LevelCritical {
		return "CRITICAL"
	}
	return strings.ToUpper(l.String())
}

func newWriter(cfg config.LoggingConfig) (io.Writer, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Output {
	case "stdout":
		return os.Stdout, nop, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("log file path is required when output is 'file'")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return lj, lj.Close, nil
	default:
		return os.Stderr, nop, nil
	}
}
