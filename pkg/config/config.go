// Package config carries runtime settings for the reasoner CLI and the
// refinement optimizer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the reasoner runtime configuration.
type Config struct {
	// CriticalityThreshold: nodes at or above this level count as critical
	// for prognosis.
	CriticalityThreshold int `yaml:"criticality_threshold"`
	// RefinementIntervalMinMS / RefinementIntervalMaxMS bound the temporal
	// window placed on tentative refinement edges.
	RefinementIntervalMinMS uint64 `yaml:"refinement_interval_min_ms"`
	RefinementIntervalMaxMS uint64 `yaml:"refinement_interval_max_ms"`
	// LogLevel: DEBUG, INFO, WARN or ERROR.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CriticalityThreshold:    5,
		RefinementIntervalMinMS: 0,
		RefinementIntervalMaxMS: 1000,
		LogLevel:                "INFO",
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	cv := NewConfigValidator("Config")
	cv.RangeInt("CriticalityThreshold", c.CriticalityThreshold, 0, 10)
	cv.OneOf("LogLevel", c.LogLevel, []string{"DEBUG", "INFO", "WARN", "ERROR"})
	cv.Custom("RefinementInterval", func() error {
		if c.RefinementIntervalMinMS > c.RefinementIntervalMaxMS {
			return fmt.Errorf("min %d exceeds max %d",
				c.RefinementIntervalMinMS, c.RefinementIntervalMaxMS)
		}
		return nil
	})
	return cv.Error()
}
