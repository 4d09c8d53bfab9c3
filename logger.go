package kcluster

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kcluster-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithAlgorithm adds an algorithm field to the logger.
func (l *Logger) WithAlgorithm(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", name),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithTry adds the restart index to the logger.
func (l *Logger) WithTry(try int) *Logger {
	return &Logger{
		Logger: l.Logger.With("try", try),
	}
}

// LogIteration logs the objective after one iteration. Verbose iterations are
// logged at info level, all others at debug level.
func (l *Logger) LogIteration(ctx context.Context, verbose bool, iter int, objective float64) {
	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	l.Log(ctx, level, "iteration",
		"iter", iter,
		"objective", objective,
	)
}

// LogRun logs the end of a single run.
func (l *Logger) LogRun(ctx context.Context, iterations int, objective float64, reason string, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "run failed",
			"iterations", iterations,
			"error", err,
		)
	case reason == stopReasonIncreased || reason == stopReasonMaxIterations:
		l.WarnContext(ctx, "run stopped without converging",
			"iterations", iterations,
			"objective", objective,
			"reason", reason,
		)
	default:
		l.DebugContext(ctx, "run converged",
			"iterations", iterations,
			"objective", objective,
		)
	}
}

// LogBest logs the restart that was selected.
func (l *Logger) LogBest(ctx context.Context, try, tries int, objective float64) {
	l.InfoContext(ctx, "best run selected",
		"try", try,
		"tries", tries,
		"objective", objective,
	)
}
