// Package reportserver hosts run reports over HTTP: rendered HTML pages
// backed by the results on disk, plus the raw result database for download.
package reportserver

import (
	"errors"
	"net/http"
	"strings"

	"inboxeval/internal/report"
	"inboxeval/internal/runner"
)

// Config captures the settings for serving reports.
type Config struct {
	Addr string
	// OutputDir is the run-artifact root (output_dir/<commit>/<run-id>).
	OutputDir string
	// DBPath optionally exposes the ingested DuckDB file for download.
	DBPath string
}

// NewHandler builds the HTTP handler for the report UI and data endpoints.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.OutputDir == "" {
		return nil, errors.New("reportserver: output dir is required")
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", serveLatest(cfg.OutputDir))
	mux.HandleFunc("/runs/", serveRun(cfg.OutputDir))
	if cfg.DBPath != "" {
		mux.Handle("/data/results.duckdb", serveDatabase(cfg.DBPath))
	}
	return mux, nil
}

// serveLatest renders the newest run across all commits.
func serveLatest(outputDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		set, _, err := report.LatestRun(outputDir)
		if err != nil {
			http.Error(w, "no runs found", http.StatusNotFound)
			return
		}
		writeReport(w, r, set)
	}
}

// serveRun renders one run addressed by its run ID.
func serveRun(outputDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := strings.TrimPrefix(r.URL.Path, "/runs/")
		if runID == "" || strings.Contains(runID, "/") {
			http.NotFound(w, r)
			return
		}
		set, _, err := report.ResolveRun(r.Context(), outputDir, runID, nil)
		if err != nil {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		writeReport(w, r, set)
	}
}

func writeReport(w http.ResponseWriter, r *http.Request, set runner.ResultSet) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Page([]runner.ResultSet{set}).Render(r.Context(), w); err != nil {
		http.Error(w, "render report", http.StatusInternalServerError)
	}
}

// serveDatabase serves the DuckDB file from disk for browser-side processing.
func serveDatabase(dbPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, dbPath)
	})
}
