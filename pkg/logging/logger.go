// Package logging provides the structured logger the rpc engine and
// the client's handle-bound objects log through.
//
// It is a thin wrapper around log/slog, adapted from the teacher's
// logging package: stderr by default (CLI-friendly), an optional
// io.Writer that replaces stderr, and a Service tag attached to every
// record so multiple client instances in one process are
// distinguishable in the log stream.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level mirrors slog's severity levels with names this package's
// callers use directly, without pulling in log/slog's own constants.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config controls logger construction.
type Config struct {
	// Level is the minimum severity that is emitted.
	Level Level
	// Service names the component this logger belongs to (e.g. "rpc",
	// "client"); attached as a "service" attribute on every record.
	Service string
	// Writer overrides the destination; defaults to os.Stderr.
	Writer io.Writer
}

// Logger wraps *slog.Logger with the Config's fixed attributes baked in.
type Logger struct {
	inner *slog.Logger
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level.slogLevel()})
	base := slog.New(handler)
	if cfg.Service != "" {
		base = base.With(slog.String("service", cfg.Service))
	}
	return &Logger{inner: base}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns a process-wide Logger at Info level writing to
// stderr, built on first use.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Config{Level: LevelInfo, Service: "tw-client"})
	})
	return defaultLogger
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// With returns a child Logger with additional fixed attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}
