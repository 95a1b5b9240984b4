package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	return rec
}

func TestNewLogger(t *testing.T) {
	if NewLogger() == nil {
		t.Fatal("NewLogger() returned nil")
	}
	if Discard() == nil {
		t.Fatal("Discard() returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" ERROR ", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "ERROR")
	if got := getLogLevelFromEnv(); got != slog.LevelError {
		t.Errorf("getLogLevelFromEnv() = %v, expected ERROR", got)
	}
}

func TestRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	if got := GetRunID(ctx); got != "run-1" {
		t.Errorf("GetRunID() = %q, expected run-1", got)
	}

	generated := GetRunID(WithRunID(context.Background(), ""))
	if _, err := uuid.Parse(generated); err != nil {
		t.Errorf("generated run ID %q is not a UUID: %v", generated, err)
	}

	if GetRunID(context.Background()) != "" {
		t.Error("GetRunID() on empty context should be empty")
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)
	ctx := WithRunID(context.Background(), "abc")

	logger.Debug(ctx, "debug message", "tick", 3)
	rec := decodeLast(t, &buf)
	if rec["msg"] != "debug message" || rec["run_id"] != "abc" || rec["tick"] != float64(3) {
		t.Errorf("unexpected debug record: %v", rec)
	}

	logger.Info(ctx, "info message")
	if rec := decodeLast(t, &buf); rec["level"] != "INFO" {
		t.Errorf("unexpected info record: %v", rec)
	}

	logger.Warn(ctx, "warn message")
	if rec := decodeLast(t, &buf); rec["level"] != "WARN" {
		t.Errorf("unexpected warn record: %v", rec)
	}

	logger.Error(ctx, "error message", errors.New("boom"))
	if rec := decodeLast(t, &buf); rec["level"] != "ERROR" || rec["error"] != "boom" {
		t.Errorf("unexpected error record: %v", rec)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelWarn)
	logger.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at WARN level: %s", buf.String())
	}
}

func TestSanitizeAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo)
	logger.Info(context.Background(), "opening store", "checkpoint_dsn", "file:x.db?password=hunter2", "path", "x.db")

	rec := decodeLast(t, &buf)
	if rec["checkpoint_dsn"] != "[REDACTED]" {
		t.Errorf("checkpoint_dsn = %v, expected redaction", rec["checkpoint_dsn"])
	}
	if rec["path"] != "x.db" {
		t.Errorf("path = %v, expected x.db", rec["path"])
	}
}

func TestWrapError(t *testing.T) {
	base := errors.New("base")

	if WrapError(nil, "ctx") != nil {
		t.Error("WrapError(nil) should be nil")
	}

	wrapped := WrapError(base, "loading %s", "config.json")
	if wrapped.Error() != "loading config.json: base" {
		t.Errorf("WrapError() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error does not unwrap to base")
	}
}
