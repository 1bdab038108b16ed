package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{raw: "", want: LevelInfo},
		{raw: "DEBUG", want: LevelDebug},
		{raw: " warning ", want: LevelWarn},
		{raw: "error", want: LevelError},
		{raw: "verbose", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q)=%v want=%v", tc.raw, got, tc.want)
		}
	}
}

func TestNewWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelInfo, FormatJSON).With("season", 2019)

	logger.Debug("hidden")
	logger.Info("season built", "rows", 12, "err", errors.New("boom"), "dangling")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := sonic.UnmarshalString(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "season built" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["season"] != float64(2019) || entry["rows"] != float64(12) || entry["err"] != "boom" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if _, ok := entry["dangling"]; !ok {
		t.Fatalf("expected dangling key to be logged")
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewWriter(&buf, LevelInfo, FormatConsole))
	t.Cleanup(func() { SetDefault(nil) })

	var logger *Logger
	logger.Warn("from nil")
	if !strings.Contains(buf.String(), "from nil") {
		t.Fatalf("expected default logger output, got %q", buf.String())
	}
}

func TestNamedAndTypedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelDebug, FormatJSON).Named("cfbd")

	logger.Debug("request done", "elapsed", 1500*time.Millisecond, "paths", []string{"/teams", "/plays"}, 7, "x")

	var entry map[string]any
	if err := sonic.UnmarshalString(strings.TrimSpace(buf.String()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["component"] != "cfbd" {
		t.Fatalf("expected component field, got %v", entry)
	}
	if entry["elapsed"] != float64(1500) {
		t.Fatalf("expected elapsed in millis, got %v", entry["elapsed"])
	}
	paths, ok := entry["paths"].([]any)
	if !ok || len(paths) != 2 {
		t.Fatalf("expected string list, got %v", entry["paths"])
	}
	if entry["arg"] != "x" {
		t.Fatalf("expected non-string key to log as arg, got %v", entry)
	}
}

func TestSyncIsShared(t *testing.T) {
	logger := NewNop()
	child := logger.With("season", 2019).Named("builder")
	if err := child.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !logger.synced.Load() {
		t.Fatalf("expected derived logger sync to mark the root")
	}
}
