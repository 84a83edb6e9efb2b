package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/contrib/processors/minsev"
)

func TestInstrumentLocalHandlers(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{format: "text", check: func(t *testing.T, out string) {
			if !strings.Contains(out, "msg=hello") || strings.Contains(out, "hidden") {
				t.Errorf("text output = %q", out)
			}
		}},
		{format: "json", check: func(t *testing.T, out string) {
			var record map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &record); err != nil {
				t.Fatalf("json output %q: %v", out, err)
			}
			if record["msg"] != "hello" {
				t.Errorf("msg = %v", record["msg"])
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			shutdown, err := instrument(context.Background(), &buf, slog.LevelInfo, tt.format, ExporterNone)
			if err != nil {
				t.Fatalf("instrument: %v", err)
			}
			slog.Debug("hidden")
			slog.Info("hello")
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestInstrumentRejectsUnknown(t *testing.T) {
	var buf bytes.Buffer
	if _, err := instrument(context.Background(), &buf, slog.LevelInfo, "xml", ExporterNone); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := instrument(context.Background(), &buf, slog.LevelInfo, "text", "kafka"); err == nil {
		t.Error("expected error for unknown exporter")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  minsev.Severity
	}{
		{slog.LevelDebug, minsev.SeverityDebug},
		{slog.LevelInfo, minsev.SeverityInfo},
		{slog.LevelWarn, minsev.SeverityWarn},
		{slog.LevelError, minsev.SeverityError},
		{slog.LevelError + 4, minsev.SeverityError},
	}
	for _, tt := range tests {
		if got := severity(tt.level); got != tt.want {
			t.Errorf("severity(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
