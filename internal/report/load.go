// Package report loads stored run results and renders them as HTML and text.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inboxeval/internal/runner"
)

// RefResolver maps a git ref to a commit hash. Nil disables ref resolution.
type RefResolver func(ctx context.Context, ref string) (string, error)

// LoadResultSet reads one results.json file.
func LoadResultSet(path string) (runner.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runner.ResultSet{}, err
	}
	var set runner.ResultSet
	if err := json.Unmarshal(data, &set); err != nil {
		return runner.ResultSet{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return set, nil
}

// ResolveRun locates a run by reference. The ref may be a run ID, a commit
// label under outputDir, or a git ref the resolver can map to a commit; for
// commit refs the latest run under that commit is picked.
func ResolveRun(ctx context.Context, outputDir, ref string, resolve RefResolver) (runner.ResultSet, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return runner.ResultSet{}, "", fmt.Errorf("run ref is required")
	}
	commit := ref
	if resolve != nil {
		if resolved, err := resolve(ctx, ref); err == nil {
			commit = resolved
		}
	}
	for _, candidate := range commitCandidates(outputDir, commit, ref) {
		commitDir := filepath.Join(outputDir, candidate)
		if info, err := os.Stat(commitDir); err == nil && info.IsDir() {
			runDir, err := findLatestRunDir(commitDir)
			if err != nil {
				return runner.ResultSet{}, "", err
			}
			set, err := LoadResultSet(filepath.Join(runDir, "results.json"))
			return set, runDir, err
		}
	}
	runDir, err := findRunByID(outputDir, ref)
	if err != nil {
		return runner.ResultSet{}, "", err
	}
	set, err := LoadResultSet(filepath.Join(runDir, "results.json"))
	return set, runDir, err
}

// LatestRun returns the newest run across every commit directory.
func LatestRun(outputDir string) (runner.ResultSet, string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return runner.ResultSet{}, "", err
	}
	var bestDir, bestRunID string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		runDir, err := findLatestRunDir(filepath.Join(outputDir, entry.Name()))
		if err != nil {
			continue
		}
		runID := filepath.Base(runDir)
		if runID > bestRunID {
			bestRunID = runID
			bestDir = runDir
		}
	}
	if bestDir == "" {
		return runner.ResultSet{}, "", fmt.Errorf("no runs found in %s", outputDir)
	}
	set, err := LoadResultSet(filepath.Join(bestDir, "results.json"))
	return set, bestDir, err
}

// commitCandidates lists commit-directory names worth probing for a ref.
// Commits are stored as short labels, so prefixes of a full hash count.
func commitCandidates(outputDir, commit, ref string) []string {
	candidates := []string{commit}
	if ref != commit {
		candidates = append(candidates, ref)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return candidates
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		label := strings.TrimSuffix(name, "-dirty")
		if label != commit && strings.HasPrefix(commit, label) {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

func findLatestRunDir(commitDir string) (string, error) {
	entries, err := os.ReadDir(commitDir)
	if err != nil {
		return "", err
	}
	runIDs := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			runIDs = append(runIDs, entry.Name())
		}
	}
	if len(runIDs) == 0 {
		return "", fmt.Errorf("no runs found in %s", commitDir)
	}
	sort.Strings(runIDs)
	return filepath.Join(commitDir, runIDs[len(runIDs)-1]), nil
}

func findRunByID(outputDir, runID string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		runDir := filepath.Join(outputDir, entry.Name(), runID)
		if info, err := os.Stat(runDir); err == nil && info.IsDir() {
			return runDir, nil
		}
	}
	return "", fmt.Errorf("run %s not found", runID)
}
