package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Issue captures a single validation problem.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("config validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Evaluator names accepted in experiment declarations.
var knownEvaluators = map[string]bool{
	"classification_match": true,
	"tool_call_coverage":   true,
	"response_contains":    true,
	"transcript_schema":    true,
}

// Validate checks a config for correctness and referenced files.
func Validate(cfg *Config, baseDir string) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if baseDir == "" {
		baseDir = "."
	}

	variantIDs := validateVariants(cfg, collector.add)
	validateExperiments(cfg, baseDir, variantIDs, collector.add)
	validateRateLimits(cfg, variantIDs, collector.add)

	return collector.result()
}

func validateVariants(cfg *Config, add func(field, message string)) map[string]bool {
	ids := map[string]bool{}
	if len(cfg.Variants) == 0 {
		add("variants", "must declare at least one variant")
	}
	for i, variant := range cfg.Variants {
		prefix := fmt.Sprintf("variants[%d]", i)
		id := strings.TrimSpace(variant.ID)
		if id == "" {
			add(prefix+".id", "is required")
		} else if ids[id] {
			add(prefix+".id", fmt.Sprintf("duplicate id %q", id))
		} else {
			ids[id] = true
		}
		switch variant.Type {
		case VariantWorkflow, VariantToolAgent:
		case "":
			add(prefix+".type", "is required")
		default:
			add(prefix+".type", fmt.Sprintf("unknown type %q (expected %s or %s)", variant.Type, VariantWorkflow, VariantToolAgent))
		}
		endpoint := strings.TrimSpace(variant.Endpoint)
		if endpoint == "" {
			add(prefix+".endpoint", "is required")
		} else if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			add(prefix+".endpoint", fmt.Sprintf("%q must be an http(s) URL", endpoint))
		}
	}
	return ids
}

func validateExperiments(cfg *Config, baseDir string, variantIDs map[string]bool, add func(field, message string)) {
	if len(cfg.Experiments) == 0 {
		add("experiments", "must declare at least one experiment")
	}
	seen := map[string]bool{}
	for i, experiment := range cfg.Experiments {
		prefix := fmt.Sprintf("experiments[%d]", i)
		id := strings.TrimSpace(experiment.ID)
		if id == "" {
			add(prefix+".id", "is required")
		} else if seen[id] {
			add(prefix+".id", fmt.Sprintf("duplicate id %q", id))
		} else {
			seen[id] = true
		}
		if strings.TrimSpace(experiment.Dataset) == "" {
			add(prefix+".dataset", "is required")
		}
		for j, variant := range experiment.Variants {
			if !variantIDs[variant] {
				add(fmt.Sprintf("%s.variants[%d]", prefix, j), fmt.Sprintf("unknown variant %q", variant))
			}
		}
		needsSchema := false
		for j, name := range experiment.Evaluators {
			if !knownEvaluators[name] {
				add(fmt.Sprintf("%s.evaluators[%d]", prefix, j), fmt.Sprintf("unknown evaluator %q", name))
			}
			if name == "transcript_schema" {
				needsSchema = true
			}
		}
		schema := strings.TrimSpace(experiment.Schema)
		if needsSchema && schema == "" {
			add(prefix+".schema", "is required by the transcript_schema evaluator")
		}
		if schema != "" {
			path := schema
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			if info, err := os.Stat(path); err != nil {
				add(prefix+".schema", fmt.Sprintf("file %q not found", schema))
			} else if info.IsDir() {
				add(prefix+".schema", fmt.Sprintf("%q is a directory", schema))
			}
		}
	}
}

func validateRateLimits(cfg *Config, variantIDs map[string]bool, add func(field, message string)) {
	seen := map[string]bool{}
	for i, limit := range cfg.RateLimits {
		prefix := fmt.Sprintf("rate_limits[%d]", i)
		variant := strings.TrimSpace(limit.Variant)
		if variant == "" {
			add(prefix+".variant", "is required")
		} else if !variantIDs[variant] {
			add(prefix+".variant", fmt.Sprintf("unknown variant %q", variant))
		} else if seen[variant] {
			add(prefix+".variant", fmt.Sprintf("duplicate limit for %q", variant))
		} else {
			seen[variant] = true
		}
		if limit.Requests == 0 {
			add(prefix+".requests", "must be positive")
		}
		if limit.WindowSeconds <= 0 {
			add(prefix+".window_seconds", "must be positive")
		}
	}
}
