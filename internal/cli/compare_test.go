package cli

import (
	"strings"
	"testing"
)

// TestCompareRunsByID compares two stored runs addressed by run id.
func TestCompareRunsByID(t *testing.T) {
	inputDir := t.TempDir()
	base := storedRun("20240101T000000Z-000001", "abc123456789", "workflow-v1", 0)
	head := storedRun("20240102T000000Z-000002", "def123456789", "workflow-v1", 1)
	writeStoredRun(t, inputDir, base)
	writeStoredRun(t, inputDir, head)

	stdout, stderr, code := runCLI(t, []string{
		"compare", "--input", inputDir,
		"--base", base.RunID, "--head", head.RunID,
	})
	if code != ExitOK {
		t.Fatalf("compare failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stdout, "Base abc123456789") || !strings.Contains(stdout, "Head def123456789") {
		t.Fatalf("expected run headers, got %q", stdout)
	}
	if !strings.Contains(stdout, "workflow-v1") {
		t.Fatalf("expected variant delta, got %q", stdout)
	}
}

// TestCompareByCommit resolves runs through their commit labels.
func TestCompareByCommit(t *testing.T) {
	inputDir := t.TempDir()
	writeStoredRun(t, inputDir, storedRun("20240101T000000Z-000001", "abc123456789", "workflow-v1", 1))
	writeStoredRun(t, inputDir, storedRun("20240102T000000Z-000002", "def123456789", "workflow-v1", 1))

	_, stderr, code := runCLI(t, []string{
		"compare", "--input", inputDir,
		"--base", "abc123456789", "--head", "def123456789",
	})
	if code != ExitOK {
		t.Fatalf("compare failed (%d): %s", code, stderr)
	}
}

// TestCompareMissingBase is a usage error.
func TestCompareMissingBase(t *testing.T) {
	if _, _, code := runCLI(t, []string{"compare", "--input", t.TempDir()}); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

// TestCompareUnknownRun reports a missing base run.
func TestCompareUnknownRun(t *testing.T) {
	_, stderr, code := runCLI(t, []string{
		"compare", "--input", t.TempDir(), "--base", "missing",
	})
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "Base run not found") {
		t.Fatalf("expected base failure, got %q", stderr)
	}
}
