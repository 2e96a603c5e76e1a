package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for AgentTeam. Arguments
// follow slog conventions: alternating key/value pairs after the message.
// This allows users to provide their own logger implementation or use the
// built-in adapters.
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

// LoggerConfig configures construction of a TeamLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
	RunID     string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, AddSource: true}
}

// TeamLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods for turns, runs and model calls. It should be cheap to
// copy via With* methods.
type TeamLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	runID     string
}

// NewLogger builds a TeamLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *TeamLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &TeamLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component, runID: cfg.RunID}
}

// NewSlogLogger creates a new TeamLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *TeamLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent sets the logical component (team, agent, model, etc.).
func (l *TeamLogger) WithComponent(c string) *TeamLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithRun attaches a run identifier to every log entry.
func (l *TeamLogger) WithRun(runID string) *TeamLogger {
	nl := *l
	nl.runID = runID
	return &nl
}

// Debug logs at debug level.
func (l *TeamLogger) Debug(msg string, args ...any) {
	if l.level > LogLevelDebug {
		return
	}
	l.logger.With(anyAttrs(l)...).Debug(msg, args...)
}

// Info logs at info level.
func (l *TeamLogger) Info(msg string, args ...any) {
	if l.level > LogLevelInfo {
		return
	}
	l.logger.With(anyAttrs(l)...).Info(msg, args...)
}

// Warn logs at warn level.
func (l *TeamLogger) Warn(msg string, args ...any) {
	if l.level > LogLevelWarn {
		return
	}
	l.logger.With(anyAttrs(l)...).Warn(msg, args...)
}

// Error logs at error level.
func (l *TeamLogger) Error(msg string, args ...any) {
	if l.level > LogLevelError {
		return
	}
	l.logger.With(anyAttrs(l)...).Error(msg, args...)
}

// LogTurn records execution details for a single scheduler turn.
func (l *TeamLogger) LogTurn(agent string, messages int, dur time.Duration) {
	l.Info("Turn completed", "agent", agent, "message_count", messages, "duration", dur)
}

// LogModelCall records model call latency, token usage and success.
func (l *TeamLogger) LogModelCall(model string, tokens int, dur time.Duration, success bool, err error) {
	args := []any{"model", model, "token_count", tokens, "duration", dur, "success", success}
	if err != nil {
		args = append(args, "error", err.Error())
		l.Error("Model call failed", args...)
		return
	}
	l.Info("Model call completed", args...)
}

// LogRun records aggregate run metrics.
func (l *TeamLogger) LogRun(turns int, dur time.Duration, stopReason string, err error) {
	args := []any{"turn_count", turns, "duration", dur, "stop_reason", stopReason}
	if err != nil {
		args = append(args, "error", err.Error())
		l.Error("Run failed", args...)
		return
	}
	l.Info("Run completed", args...)
}

func anyAttrs(l *TeamLogger) []any {
	var args []any
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if l.runID != "" {
		args = append(args, "run_id", l.runID)
	}
	return args
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
