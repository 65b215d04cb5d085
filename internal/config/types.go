// Package config loads and validates the project configuration under
// .inboxeval/config.yml. One Config is built at startup and passed
// explicitly; nothing in the harness reads it as ambient global state.
package config

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the project configuration file schema.
type Config struct {
	Version     int                `yaml:"version"`
	Project     ProjectConfig      `yaml:"project"`
	Variants    []VariantConfig    `yaml:"variants"`
	Experiments []ExperimentConfig `yaml:"experiments"`
	RateLimits  []RateLimitConfig  `yaml:"rate_limits"`
}

// ProjectConfig carries project-wide settings.
type ProjectConfig struct {
	OutputDir   string `yaml:"output_dir"`
	DatasetsDir string `yaml:"datasets_dir"`
	Suite       string `yaml:"suite"`
}

// Variant families the harness knows how to adapt.
const (
	VariantWorkflow  = "workflow"
	VariantToolAgent = "tool_agent"
)

// VariantConfig declares one agent variant under comparison.
type VariantConfig struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Endpoint string `yaml:"endpoint"`
}

// ExperimentConfig declares one experiment: a dataset run across variants.
type ExperimentConfig struct {
	ID             string   `yaml:"id"`
	Dataset        string   `yaml:"dataset"`
	Variants       []string `yaml:"variants"`
	Evaluators     []string `yaml:"evaluators"`
	Schema         string   `yaml:"schema"`
	Concurrency    int      `yaml:"concurrency"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// RateLimitConfig caps invocations per rolling window for one variant.
type RateLimitConfig struct {
	Variant       string `yaml:"variant"`
	Requests      uint64 `yaml:"requests"`
	WindowSeconds int    `yaml:"window_seconds"`
}

// ParseConfig decodes a config document strictly: unknown fields and
// multi-document files are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
