package cli

import (
	"context"
	"strings"
	"testing"

	"inboxeval/internal/reportserver"
)

// TestServePassesConfig verifies flags map onto the server config.
func TestServePassesConfig(t *testing.T) {
	inputDir := t.TempDir()

	original := serveReport
	t.Cleanup(func() { serveReport = original })
	var captured reportserver.Config
	serveReport = func(_ context.Context, cfg reportserver.Config) error {
		captured = cfg
		return nil
	}

	stdout, stderr, code := runCLI(t, []string{
		"serve", "--input", inputDir, "--addr", "127.0.0.1:6001",
	})
	if code != ExitOK {
		t.Fatalf("serve failed (%d): %s", code, stderr)
	}
	if captured.Addr != "127.0.0.1:6001" {
		t.Fatalf("unexpected addr: %s", captured.Addr)
	}
	if captured.OutputDir != inputDir {
		t.Fatalf("unexpected output dir: %s", captured.OutputDir)
	}
	if !strings.Contains(stdout, "http://127.0.0.1:6001") {
		t.Fatalf("expected serving notice, got %q", stdout)
	}
}

// TestServeMissingDatabase fails fast for a bad --db path.
func TestServeMissingDatabase(t *testing.T) {
	original := serveReport
	t.Cleanup(func() { serveReport = original })
	serveReport = func(context.Context, reportserver.Config) error {
		t.Fatalf("server should not start")
		return nil
	}

	_, stderr, code := runCLI(t, []string{
		"serve", "--input", t.TempDir(), "--db", "/nonexistent/results.duckdb",
	})
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "Database not found") {
		t.Fatalf("expected database error, got %q", stderr)
	}
}

// TestServeEmptyAddr is a usage error.
func TestServeEmptyAddr(t *testing.T) {
	if _, _, code := runCLI(t, []string{"serve", "--input", t.TempDir(), "--addr", ""}); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}
