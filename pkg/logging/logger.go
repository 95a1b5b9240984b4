// Package logging provides structured logging for go-bumpmap.
// It wraps Go's standard slog package so every component logs JSON records
// tagged with the simulation run they belong to.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// LevelEnvVar names the environment variable that selects the log level.
const LevelEnvVar = "BUMPMAP_LOG_LEVEL"

// Logger wraps slog.Logger to provide run-aware logging helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing JSON to stderr at the level named by
// BUMPMAP_LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default INFO). Stdout is left
// to renderers.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr, getLogLevelFromEnv())
}

// NewLoggerTo creates a Logger writing JSON records to w at the given level.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return &Logger{slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LogWithContext logs a message and appends the run ID carried by ctx, if any.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if runID := GetRunID(ctx); runID != "" {
		args = append(args, "run_id", runID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

// runIDKey is the context key for run IDs
type runIDKey struct{}

// WithRunID attaches a run ID to the context. An empty runID is replaced by
// a freshly generated one.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		runID = NewRunID()
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// GetRunID extracts the run ID from the context, or "" when none is set.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewRunID returns a new random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ParseLevel maps a level name onto a slog level, defaulting to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getLogLevelFromEnv determines the log level from the environment.
func getLogLevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(LevelEnvVar))
}

// sanitizeAttributes masks attributes whose keys look like credentials, such
// as a checkpoint DSN carrying a password.
func sanitizeAttributes(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, sensitive := range []string{"password", "passwd", "token", "secret", "dsn"} {
		if strings.Contains(key, sensitive) {
			return slog.Attr{Key: a.Key, Value: slog.StringValue("[REDACTED]")}
		}
	}
	return a
}

// WrapError wraps an error with additional context information.
// This preserves the original error while adding descriptive context.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
