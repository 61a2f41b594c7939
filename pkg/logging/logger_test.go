package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_WritesOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("node activated", NodeID("D2"), Timestamp(1250))
	logger.Warn("window closed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var entry struct {
		Level   string         `json:"level"`
		Message string         `json:"msg"`
		Fields  map[string]any `json:"fields"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("First line is not JSON: %v", err)
	}
	if entry.Level != "INFO" || entry.Message != "node activated" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Fields["node_id"] != "D2" {
		t.Errorf("Expected node_id D2, got %v", entry.Fields["node_id"])
	}
	if entry.Fields["timestamp_ms"] != float64(1250) {
		t.Errorf("Expected timestamp_ms 1250, got %v", entry.Fields["timestamp_ms"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("Expected error entry, got %s", lines[0])
	}
}

func TestWith_PresetFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(Scenario("SCN-PB-01"))

	logger.Info("sample ingested")

	if !strings.Contains(buf.String(), "SCN-PB-01") {
		t.Errorf("Expected preset scenario field, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != DebugLevel {
		t.Error("Expected debug to parse")
	}
	if ParseLevel("unknown") != InfoLevel {
		t.Error("Expected unknown to default to info")
	}
}
