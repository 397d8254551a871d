package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentNotifier, Output: &buf})

	logger.Info("Budget exceeded", NewFields().WithUser(7).WithBudget("Food", 100, 120).ToSlice()...)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec[FieldComponent] != ComponentNotifier || rec[FieldCategory] != "Food" || rec[FieldUserID] != float64(7) {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentCLI, Output: &buf}).WithComponent(ComponentBackend)

	logger.Debug("connected")
	out := buf.String()
	if !strings.Contains(out, "component=backend") || strings.Contains(out, "component=cli") {
		t.Errorf("unexpected output %q", out)
	}
	if logger.Component() != ComponentBackend {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestContextRoundTrip(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Component() != "unknown" {
		t.Fatalf("fallback logger = %+v", got)
	}

	logger := New(DefaultConfig())
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpAlert).WithUser(3)
	if f[FieldOperation] != OpAlert || f[FieldUserID] != int64(3) {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f.ToSlice()) != 4 {
		t.Errorf("ToSlice() len = %d, want 4", len(f.ToSlice()))
	}
}
