// Package logging provides the logger injected into elev components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
)

// Logger wraps slog with debug gating and an optional syslog sink.
// Components receive a Logger at construction; there is no process
// global.
type Logger struct {
	logger *slog.Logger
	debug  bool
}

// NewLogger creates a logger that writes to stderr.
func NewLogger(debug bool) *Logger {
	return newLogger(os.Stderr, debug)
}

// NewSyslogLogger creates a logger that writes to both stderr and the
// system log using the auth facility. If syslog is unavailable the
// logger falls back to stderr only and reports the failure there.
func NewSyslogLogger(tag string, debug bool) *Logger {
	w, err := syslog.New(syslog.LOG_AUTH|syslog.LOG_NOTICE, tag)
	if err != nil {
		l := newLogger(os.Stderr, debug)
		l.Warnf("syslog unavailable, logging to stderr only: %v", err)
		return l
	}
	return newLogger(io.MultiWriter(os.Stderr, w), debug)
}

// NewWriterLogger creates a logger that writes to w. Used by tests.
func NewWriterLogger(w io.Writer, debug bool) *Logger {
	return newLogger(w, debug)
}

func newLogger(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
		debug:  debug,
	}
}

// With returns a logger that includes the given attributes on every
// record, e.g. the invocation id and invoking user.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		logger: l.logger.With(args...),
		debug:  l.debug,
	}
}

// Info logs an informational message
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Infof logs a formatted informational message
func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	if l.debug {
		l.logger.Debug(msg, args...)
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *Logger) Error(err error) {
	l.logger.Error(err.Error())
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// MaybeError logs an error if it's not nil
func (l *Logger) MaybeError(err error) {
	if err != nil {
		l.logger.Error(err.Error())
	}
}
