package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("run finished", String(FieldComponent, "supervisor"), Int(FieldExitCode, 0))

	line := buf.String()
	if !strings.Contains(line, "supervisor: run finished") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "exit_code=0") {
		t.Fatalf("expected exit code attribute, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be promoted out of attributes, got %q", line)
	}
}

func TestPrettyHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("progress", Group("rate", Float64("value", 128.5), String("unit", "kilo")))

	line := buf.String()
	if !strings.Contains(line, "rate.value=128.5") {
		t.Fatalf("expected flattened group key, got %q", line)
	}
	if !strings.Contains(line, "rate.unit=kilo") {
		t.Fatalf("expected flattened group key, got %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("failed", String("detail", "no such file"))

	if !strings.Contains(buf.String(), `detail="no such file"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q): expected %v, got %v", input, want, got)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("dropped")
	logger = NewComponentLogger(nil, "probe")
	logger.Error("also dropped")
}
