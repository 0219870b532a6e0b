package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger = NewComponentLogger(logger, "gateway")
	logger.Info("job promoted", String(FieldJobID, "job-123"), Int("assets", 3))

	out := buf.String()
	if !strings.Contains(out, "INF") {
		t.Errorf("missing level label: %q", out)
	}
	if !strings.Contains(out, "[gateway]") {
		t.Errorf("missing component: %q", out)
	}
	if !strings.Contains(out, "job promoted") {
		t.Errorf("missing message: %q", out)
	}
	if !strings.Contains(out, "- job_id: job-123") || !strings.Contains(out, "- assets: 3") {
		t.Errorf("missing fields: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar, false))

	logger.Error("upstream failed", String(FieldEngine, "surface"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v (%q)", err, buf.String())
	}
	if record["level"] != "error" {
		t.Errorf("level = %v", record["level"])
	}
	if record["msg"] != "upstream failed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["engine"] != "surface" {
		t.Errorf("engine = %v", record["engine"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	base := slog.New(newJSONHandler(&buf, levelVar, false))

	ctx := WithJobID(context.Background(), "job-9")
	ctx = WithEngine(ctx, "heightmap")
	WithContext(ctx, base).Info("poll")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if record[FieldJobID] != "job-9" || record[FieldEngine] != "heightmap" {
		t.Errorf("context fields missing: %v", record)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("nothing")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should report disabled")
	}
}
