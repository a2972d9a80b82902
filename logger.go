package maxcover

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with maxcover-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRadius adds a radius field to the logger.
func (l *Logger) WithRadius(radius float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("radius", radius),
	}
}

// WithK adds a k (site count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogCoverageBuild logs a coverage map build.
func (l *Logger) LogCoverageBuild(ctx context.Context, candidates, points int, radius float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "coverage build failed",
			"candidates", candidates,
			"points", points,
			"radius", radius,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "coverage build completed",
			"candidates", candidates,
			"points", points,
			"radius", radius,
		)
	}
}

// LogSolve logs a solve operation.
func (l *Logger) LogSolve(ctx context.Context, k int, method string, covered float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "solve failed",
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "solve completed",
			"k", k,
			"method", method,
			"covered_weight", covered,
		)
	}
}

// LogExactFallback logs a fallback from the exact solver to greedy.
func (l *Logger) LogExactFallback(ctx context.Context, reason error) {
	l.WarnContext(ctx, "exact solver unavailable, falling back to greedy",
		"reason", reason,
	)
}

// LogSnapshot logs a coverage snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
