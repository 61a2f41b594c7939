package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CriticalityThreshold != 5 {
		t.Errorf("Expected default threshold 5, got %d", cfg.CriticalityThreshold)
	}
	if cfg.RefinementIntervalMaxMS != 1000 {
		t.Errorf("Expected default interval max 1000, got %d", cfg.RefinementIntervalMaxMS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "criticality_threshold: 8\nrefinement_interval_max_ms: 5000\nlog_level: DEBUG\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CriticalityThreshold != 8 {
		t.Errorf("Expected threshold 8, got %d", cfg.CriticalityThreshold)
	}
	if cfg.RefinementIntervalMaxMS != 5000 {
		t.Errorf("Expected interval max 5000, got %d", cfg.RefinementIntervalMaxMS)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("Expected log level DEBUG, got %s", cfg.LogLevel)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"threshold too high", "criticality_threshold: 11\n"},
		{"bad log level", "log_level: verbose\n"},
		{"inverted interval", "refinement_interval_min_ms: 2000\nrefinement_interval_max_ms: 100\n"},
		{"not yaml", ":\n\t-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
