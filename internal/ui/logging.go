package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger keeps the printf-style calls used across the CLI on top of slog.
type Logger struct {
	Debug bool
	s     *slog.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := NewRedactingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	return &Logger{Debug: debug, s: slog.New(h)}
}

// Discard returns a logger that drops everything, for tests and library use.
func Discard() *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With returns a logger that adds attrs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Debug: l.Debug, s: l.s.With(args...)}
}

func (l *Logger) Slog() *slog.Logger { return l.s }

func (l *Logger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l *Logger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.s.Enabled(ctx, level) {
		return
	}

	l.s.Log(ctx, level, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
