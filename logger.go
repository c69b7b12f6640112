package hitree

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hitree-specific context.
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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDepth adds a depth field to the logger.
func (l *Logger) WithDepth(depth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("depth", depth),
	}
}

// WithWidth adds a block width field to the logger.
func (l *Logger) WithWidth(width int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogNodeAlloc logs the allocation of a node at the given level.
func (l *Logger) LogNodeAlloc(ctx context.Context, level int, handle uint32) {
	l.DebugContext(ctx, "node allocated",
		"level", level,
		"handle", handle,
	)
}

// LogNodeFree logs the release of an emptied node.
func (l *Logger) LogNodeFree(ctx context.Context, level int, handle uint32) {
	l.DebugContext(ctx, "node freed",
		"level", level,
		"handle", handle,
	)
}

// LogMaterialize logs the completion of a materialization.
func (l *Logger) LogMaterialize(ctx context.Context, count int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "materialize failed",
			"count", count,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "materialize completed",
			"count", count,
			"duration", duration,
		)
	}
}

// LogValidate logs the outcome of a structural validation.
func (l *Logger) LogValidate(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "invariant violation",
			"entries", entries,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "validation passed",
			"entries", entries,
		)
	}
}
