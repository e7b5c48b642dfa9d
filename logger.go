package nestgo

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with sampler-specific context.
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

// WithRunID adds a run identifier field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogIteration logs the state of one nested iteration.
func (l *Logger) LogIteration(niterations, nclusters, nlive int, ratio, logEvidence, informationGain float64) {
	l.Debug("nested iteration",
		"niterations", niterations,
		"nclusters", nclusters,
		"nlive", nlive,
		"ratio", ratio,
		"log_evidence", logEvidence,
		"information_gain", informationGain,
	)
}

// LogDrawFailure logs an exhausted constrained draw. The run finalizes
// with the posterior gathered so far.
func (l *Logger) LogDrawFailure(niterations, attempts int, worstLogLikelihood float64) {
	l.Warn("cannot find a point with a better likelihood, stopping the nested sampling loop prematurely",
		"niterations", niterations,
		"attempts", attempts,
		"worst_log_likelihood", worstLogLikelihood,
	)
}

// LogRunCompleted logs a finished run.
func (l *Logger) LogRunCompleted(niterations int, logEvidence, logEvidenceError, informationGain float64, elapsed time.Duration) {
	l.Info("nested sampling completed",
		"niterations", niterations,
		"log_evidence", logEvidence,
		"log_evidence_error", logEvidenceError,
		"information_gain", informationGain,
		"elapsed", elapsed,
	)
}
