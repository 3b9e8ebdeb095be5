package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Level is a thin enum for user friendly level configuration decoupled from slog.
type Level int

const (
	// LevelDebug is the debug logging level.
	LevelDebug Level = iota
	// LevelInfo is the informational logging level.
	LevelInfo
	// LevelWarn is the warning logging level.
	LevelWarn
	// LevelError is the error logging level.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name ("debug", "info", "warn", "error", lower or upper case)
// to a Level. Unknown names fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger defines the minimal logging interface.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config configures construction of a slog backed Logger.
type Config struct {
	Level     Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns a baseline JSON info level configuration writing to stderr.
func DefaultConfig() *Config {
	return &Config{Level: LevelInfo, Format: "json", Output: os.Stderr}
}

// New builds a slog backed Logger from a config (or defaults if nil).
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

func slogLevel(l Level) slog.Level {
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

// With returns a Logger that adds args to every entry. Slog backed loggers
// use slog's native attribute chaining; any other Logger is wrapped.
func With(l Logger, args ...any) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	if len(args) == 0 {
		return l
	}
	switch v := l.(type) {
	case NoOpLogger:
		return v
	case *SlogAdapter:
		return &SlogAdapter{Logger: v.Logger.With(args...)}
	case *attrLogger:
		merged := make([]any, 0, len(v.attrs)+len(args))
		merged = append(merged, v.attrs...)
		merged = append(merged, args...)
		return &attrLogger{base: v.base, attrs: merged}
	default:
		return &attrLogger{base: l, attrs: args}
	}
}

type attrLogger struct {
	base  Logger
	attrs []any
}

func (a *attrLogger) with(args []any) []any {
	out := make([]any, 0, len(args)+len(a.attrs))
	out = append(out, args...)
	return append(out, a.attrs...)
}

func (a *attrLogger) Debug(msg string, args ...any) { a.base.Debug(msg, a.with(args)...) }
func (a *attrLogger) Info(msg string, args ...any)  { a.base.Info(msg, a.with(args)...) }
func (a *attrLogger) Warn(msg string, args ...any)  { a.base.Warn(msg, a.with(args)...) }
func (a *attrLogger) Error(msg string, args ...any) { a.base.Error(msg, a.with(args)...) }

// LogLLMCall records model call latency and outcome.
func LogLLMCall(l Logger, model string, dur time.Duration, err error) {
	if err != nil {
		l.Error("llm.call.failed", "model", model, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("llm.call.completed", "model", model, "duration_ms", dur.Milliseconds())
}

// LogToolCall records execution details for a tool invocation.
func LogToolCall(l Logger, tool string, dur time.Duration, err error) {
	if err != nil {
		l.Error("tool.call.failed", "tool", tool, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("tool.call.completed", "tool", tool, "duration_ms", dur.Milliseconds())
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
