package drum

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with DRUM-specific context.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds the structure's name to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("drum", name),
	}
}

// WithBucket adds a bucket field to the logger.
func (l *Logger) WithBucket(bucket int) *Logger {
	return &Logger{
		Logger: l.Logger.With("bucket", bucket),
	}
}

// LogFeed logs a feed of all buckets.
func (l *Logger) LogFeed(ctx context.Context, buckets, records int, bytes int64, mergeDue bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "feed failed",
			"buckets", buckets,
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "feed completed",
		"buckets", buckets,
		"records", records,
		"bytes", bytes,
		"merge_due", mergeDue,
	)
}

// LogMergeBucket logs the merge of one bucket.
func (l *Logger) LogMergeBucket(ctx context.Context, bucket, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bucket merge failed",
			"bucket", bucket,
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "bucket merged",
		"bucket", bucket,
		"records", records,
	)
}

// LogMerge logs a merge of all buckets.
func (l *Logger) LogMerge(ctx context.Context, records int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "merge completed",
		"records", records,
		"duration", duration,
	)
}

// LogSynchronize logs a synchronize.
func (l *Logger) LogSynchronize(ctx context.Context, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "synchronize failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "synchronized",
		"duration", duration,
	)
}

// LogDispose logs closing the backing store.
func (l *Logger) LogDispose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dispose failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "disposed")
}
