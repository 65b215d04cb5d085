package config

import "strings"

// Default values applied by Normalize.
const (
	DefaultConcurrency    = 2
	DefaultTimeoutSeconds = 60
	DefaultSuite          = "local"
)

// Normalize fills defaults before validation.
func Normalize(cfg *Config) {
	if strings.TrimSpace(cfg.Project.OutputDir) == "" {
		cfg.Project.OutputDir = DefaultOutputDir
	}
	if strings.TrimSpace(cfg.Project.DatasetsDir) == "" {
		cfg.Project.DatasetsDir = DefaultDatasetsDir
	}
	if strings.TrimSpace(cfg.Project.Suite) == "" {
		cfg.Project.Suite = DefaultSuite
	}
	for i := range cfg.Experiments {
		experiment := &cfg.Experiments[i]
		if experiment.Concurrency <= 0 {
			experiment.Concurrency = DefaultConcurrency
		}
		if experiment.TimeoutSeconds <= 0 {
			experiment.TimeoutSeconds = DefaultTimeoutSeconds
		}
		if len(experiment.Variants) == 0 {
			for _, variant := range cfg.Variants {
				experiment.Variants = append(experiment.Variants, variant.ID)
			}
		}
		if len(experiment.Evaluators) == 0 {
			experiment.Evaluators = []string{"classification_match", "tool_call_coverage"}
		}
	}
}
