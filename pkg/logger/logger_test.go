package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level Level
		ok    bool
	}{
		{"trace", TraceLevel, true},
		{"DEBUG", DebugLevel, true},
		{"", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"verbose", InfoLevel, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.in)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v, %v", tt.in, level, ok, tt.level, tt.ok)
		}
	}
}

func TestInitializeRejectsInvalidLevel(t *testing.T) {
	if err := Initialize(Config{Level: Level(42)}); err == nil {
		t.Fatal("Initialize() accepted an invalid level")
	}
}

func TestNewDefaultsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel}, &buf)
	l.Log(InfoLevel, "hello")

	if !strings.Contains(buf.String(), "scansort: hello") {
		t.Errorf("expected default component in output, got %q", buf.String())
	}
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "test"}, &bytes.Buffer{})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "mapping reviewed",
		Component: "test",
		Fields:    map[string]interface{}{"pages": 6, "action": "copy", "files": 5},
	}

	result := l.formatPretty(entry)

	for _, part := range []string{"2025-01-01 12:00:00", "[INFO]", "test:", "mapping reviewed", "{action=copy, files=5, pages=6}"} {
		if !strings.Contains(result, part) {
			t.Errorf("formatPretty() result missing expected part: %s\nResult: %s", part, result)
		}
	}
}

func TestLoggerNoOpMarker(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, NoOp: true}, &buf)
	l.Log(InfoLevel, "would copy")

	if !strings.Contains(buf.String(), "[NO-OP] would copy") {
		t.Errorf("expected no-op marker, got %q", buf.String())
	}
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Level:  InfoLevel,
		JSON:   true,
		Fields: []Field{String("run_id", "r-1")},
	}, &buf)

	l.Log(InfoLevel, "reconciled", Int("total_pages", 6))

	var parsed LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed); err != nil {
		t.Fatalf("Log() produced invalid JSON: %v\nOutput: %s", err, buf.String())
	}
	if parsed.Message != "reconciled" || parsed.Level != "INFO" {
		t.Errorf("unexpected entry: %+v", parsed)
	}
	if parsed.Fields["run_id"] != "r-1" {
		t.Errorf("expected run_id field, got %v", parsed.Fields)
	}
	if parsed.Fields["total_pages"] != float64(6) {
		t.Errorf("expected total_pages=6, got %v", parsed.Fields["total_pages"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel}, &buf)

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	if strings.Contains(output, "info message") || strings.Contains(output, "debug message") {
		t.Errorf("lower levels should be filtered out: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR should appear: %s", output)
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := Ints("missing", []int{10, 12}); f.Key != "missing" || len(f.Value.([]int)) != 2 {
		t.Errorf("Ints() = %+v", f)
	}
	if f := Strings("include", []string{"*.tif"}); f.Key != "include" || f.Value.([]string)[0] != "*.tif" {
		t.Errorf("Strings() = %+v", f)
	}
	if f := Bool("overwrite", true); f.Value != true {
		t.Errorf("Bool() = %+v", f)
	}
	if f := Err(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Errorf("Err() = %+v", f)
	}
	if f := Err(nil); f.Value != nil {
		t.Errorf("Err(nil) = %+v", f)
	}
}

func TestSetOutput(t *testing.T) {
	if err := Initialize(Config{Level: InfoLevel, Component: "test"}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("output test message")
	Debug("hidden debug message")

	output := buf.String()
	if !strings.Contains(output, "output test message") {
		t.Errorf("SetOutput() did not redirect output correctly: %s", output)
	}
	if strings.Contains(output, "hidden debug message") {
		t.Errorf("debug message should be filtered: %s", output)
	}
}

func TestFallbackLogging(t *testing.T) {
	original := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = original }()

	// Falls back to stderr; must not panic.
	Info("fallback test message")
	Error("fallback error message")
}
