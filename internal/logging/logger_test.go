package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"cutroom/internal/services"
)

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("offsets persisted", String(FieldComponent, "sync-engine"), Int("cameras", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO sync-engine: offsets persisted") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "cameras=3") {
		t.Fatalf("expected attr in line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be promoted, not printed as attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("download failed", String("url", "https://example.com/a b.wav"))

	if !strings.Contains(buf.String(), `url="https://example.com/a b.wav"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithSessionID(context.Background(), "sess-7")
	ctx = services.WithStage(ctx, "sync")
	WithContext(ctx, logger).Info("starting")

	line := buf.String()
	if !strings.Contains(line, "session_id=sess-7") || !strings.Contains(line, "stage=sync") {
		t.Fatalf("expected context fields, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
