package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitScaffoldsProject scaffolds config, dataset, and schema files.
func TestInitScaffoldsProject(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, ".inboxeval", "config.yml")

	original := initInput
	t.Cleanup(func() { initInput = original })
	initInput = strings.NewReader("y\ny\n")

	stdout, stderr, code := runCLI(t, []string{"init", "--spec", target})
	if code != ExitOK {
		t.Fatalf("init failed (%d): %s", code, stderr)
	}
	for _, path := range []string{
		target,
		filepath.Join(root, "datasets", "triage.json"),
		filepath.Join(root, "schemas", "response.schema.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected written path in output, got %q", stdout)
	}

	if _, _, validateCode := runCLI(t, []string{"validate", "--spec", target}); validateCode != ExitOK {
		t.Fatalf("expected scaffolded project to validate")
	}
}

// TestInitDeclinedCancels aborts without writing anything.
func TestInitDeclinedCancels(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, ".inboxeval", "config.yml")

	original := initInput
	t.Cleanup(func() { initInput = original })
	initInput = strings.NewReader("n\n")

	_, stderr, code := runCLI(t, []string{"init", "--spec", target})
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "cancelled") {
		t.Fatalf("expected cancellation notice, got %q", stderr)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected no config written, got %v", err)
	}
}

// TestInitRefusesExistingConfig never overwrites an existing config.
func TestInitRefusesExistingConfig(t *testing.T) {
	_, configPath := writeProject(t, "http://127.0.0.1:1/invoke")

	original := initInput
	t.Cleanup(func() { initInput = original })
	initInput = strings.NewReader("y\ny\n")

	_, stderr, code := runCLI(t, []string{"init", "--spec", configPath})
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected existing-file failure, got %q", stderr)
	}
}
