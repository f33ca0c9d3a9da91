package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestNewWritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger := New(Config{Level: "info", Dir: dir, Console: &console})
	logger.With("session_id", "abc").Info("simulation started", "index", 2)
	logger.Debug("hidden")
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	out := console.String()
	if !strings.Contains(out, "simulation started") || !strings.Contains(out, "session_id=abc") {
		t.Errorf("Console output missing record: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Debug record should be filtered at info level")
	}

	content, err := os.ReadFile(logger.LogFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(lines))
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if record["msg"] != "simulation started" {
		t.Errorf("Expected msg 'simulation started', got %v", record["msg"])
	}
	if record["session_id"] != "abc" {
		t.Errorf("Expected session_id abc, got %v", record["session_id"])
	}
	if record["index"] != float64(2) {
		t.Errorf("Expected index 2, got %v", record["index"])
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	logger := New(Config{Level: "debug"})
	logger.Info("dropped")
	if logger.LogFile != "" {
		t.Errorf("Expected no log file, got %s", logger.LogFile)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"Warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input).Level().String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
