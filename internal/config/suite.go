package config

import (
	"os"
	"strings"
)

// SuiteEnvVar names the environment variable overriding the suite label
// attached to externally reported results.
const SuiteEnvVar = "INBOXEVAL_SUITE"

// ResolveSuite returns the suite label for a run: the environment override
// when set, otherwise the configured label, otherwise the default. A missing
// variable is never an error.
func ResolveSuite(cfg Config) string {
	if suite := strings.TrimSpace(os.Getenv(SuiteEnvVar)); suite != "" {
		return suite
	}
	if suite := strings.TrimSpace(cfg.Project.Suite); suite != "" {
		return suite
	}
	return DefaultSuite
}
