package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected Level
	}{
		{"trace", TraceLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"ERROR", ErrorLevel},
		{"  debug ", DebugLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}

func TestLevelString(t *testing.T) {
	if TraceLevel.String() != "TRACE" || ErrorLevel.String() != "ERROR" {
		t.Errorf("unexpected level strings: %s %s", TraceLevel, ErrorLevel)
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for out-of-range level")
	}
}

func TestLogFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel}, &buf)

	l.Log(InfoLevel, "should not appear")
	l.Log(WarnLevel, "should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Error("info message logged despite warn threshold")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn message missing from output")
	}
}

func TestLogPrettyFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel}, &buf)

	l.Log(InfoLevel, "updated entry",
		String("entry", "abc123"),
		Int("removed", 2),
		Bool("published", true),
		Duration("backoff", 2*time.Second),
	)

	out := buf.String()
	if !strings.Contains(out, "updated entry") {
		t.Fatalf("message missing: %q", out)
	}
	if !strings.Contains(out, "entry=abc123, removed=2, published=true, backoff=2s") {
		t.Errorf("fields not rendered in call order: %q", out)
	}
}

func TestLogJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, JSON: true}, &buf)

	l.Log(ErrorLevel, "update failed", Err(errors.New("boom")))

	var entry Entry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "ERROR" {
		t.Errorf("expected ERROR level, got %s", entry.Level)
	}
	if entry.Message != "update failed" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Fields["error"] != "boom" {
		t.Errorf("expected error field 'boom', got %v", entry.Fields["error"])
	}
}

func TestDryRunMarker(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, DryRun: true}, &buf)

	l.Log(InfoLevel, "would delete entry")

	if !strings.Contains(buf.String(), "[DRY-RUN]") {
		t.Errorf("expected [DRY-RUN] marker in output: %q", buf.String())
	}
}

func TestUninitializedLoggerStillWritesToStderr(t *testing.T) {
	saved := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = saved }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	savedStderr := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = savedStderr }()

	Error("Command execution failed", Err(errors.New("unknown flag: --bogus")))
	Warn("about to fall back")

	_ = w.Close()
	out, err := io.ReadAll(r)
	os.Stderr = savedStderr
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}

	text := string(out)
	if !strings.Contains(text, "Command execution failed") {
		t.Errorf("error message missing from stderr fallback: %q", text)
	}
	if !strings.Contains(text, "unknown flag: --bogus") {
		t.Errorf("error field missing from stderr fallback: %q", text)
	}
	if !strings.Contains(text, "about to fall back") {
		t.Errorf("warn message missing from stderr fallback: %q", text)
	}
}
