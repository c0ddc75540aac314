package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// SlogLogger adapts log/slog to ports.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// New builds a text logger on w. Verbose enables debug output; otherwise only
// warnings and errors are written.
func New(w io.Writer, verbose bool) *SlogLogger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return NewWithLevel(w, level)
}

// NewWithLevel builds a text logger on w at the given level.
func NewWithLevel(w io.Writer, level slog.Level) *SlogLogger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{log: slog.New(handler)}
}

// FromEnv honours CODEREFACTOR_LOG_LEVEL and CODEREFACTOR_DEBUG when verbose is false.
func FromEnv(w io.Writer, verbose bool) *SlogLogger {
	if verbose || os.Getenv("CODEREFACTOR_DEBUG") == "1" {
		return New(w, true)
	}
	if raw := os.Getenv("CODEREFACTOR_LOG_LEVEL"); raw != "" {
		if level, err := ParseLevel(raw); err == nil {
			return NewWithLevel(w, level)
		}
	}
	return New(w, false)
}

// ParseLevel converts debug/info/warn/error into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", s)
	}
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.log.Error(msg, args...)
}

// attrs flattens fields in key order so output is stable.
func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

// Nop discards everything. Useful in tests.
type Nop struct{}

func (Nop) Debug(string, map[string]interface{})        {}
func (Nop) Info(string, map[string]interface{})         {}
func (Nop) Warn(string, map[string]interface{})         {}
func (Nop) Error(string, error, map[string]interface{}) {}
