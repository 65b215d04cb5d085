// Command generate_fixture writes a synthetic result-store database for
// report and query development against realistic data volumes.
package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	duckdbdriver "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"inboxeval/internal/resultstore"
)

// fixtureConfig defines the JSON config for generating a fixture database.
type fixtureConfig struct {
	Name       string   `json:"name"`
	Runs       int      `json:"runs"`
	Examples   int      `json:"examples"`
	Variants   []string `json:"variants"`
	Evaluators []string `json:"evaluators"`
}

func main() {
	configPath := flag.String("config", "", "path to fixture config JSON")
	outPath := flag.String("out", "", "output duckdb file path")
	flag.Parse()
	if *configPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: generate_fixture --config <path> --out <duckdb file>")
		os.Exit(2)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir output dir: %v\n", err)
		os.Exit(1)
	}
	if err := removeIfExists(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := generateFixture(ctx, *outPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "generate fixture: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (fixtureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureConfig{}, err
	}
	var cfg fixtureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fixtureConfig{}, err
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = []string{"workflow-v1", "agent-v2"}
	}
	if len(cfg.Evaluators) == 0 {
		cfg.Evaluators = []string{"classification_match", "tool_call_coverage"}
	}
	return cfg, nil
}

func generateFixture(ctx context.Context, path string, cfg fixtureConfig) error {
	db, err := resultstore.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for runIndex := 0; runIndex < cfg.Runs; runIndex++ {
		started := startTime.Add(time.Duration(runIndex) * time.Hour)
		runID := fmt.Sprintf("%s-%06x", started.Format("20060102T150405Z"), runIndex)
		if _, err := db.ExecContext(ctx,
			`INSERT INTO runs (run_id, suite, commit_id, started_at, finished_at, partial)
			 VALUES (?, ?, ?, ?, ?, FALSE)`,
			runID, "fixture-"+cfg.Name, fmt.Sprintf("commit-%04d", runIndex), started, started.Add(time.Minute),
		); err != nil {
			return err
		}
		for variantIndex, variant := range cfg.Variants {
			experimentID := deterministicID("experiment", runIndex*100+variantIndex)
			if _, err := db.ExecContext(ctx,
				`INSERT INTO experiments (
				   experiment_id, experiment_key, run_id, name, variant, suite,
				   concurrency_limit, partial, started_at, finished_at
				 ) VALUES (?, ?, ?, ?, ?, ?, 2, FALSE, ?, ?)`,
				experimentID,
				deterministicID("experiment-key", runIndex*100+variantIndex),
				runID,
				"triage/"+variant,
				variant,
				"fixture-"+cfg.Name,
				started,
				started.Add(time.Minute),
			); err != nil {
				return err
			}
			if err := appendScoreRecords(ctx, db, experimentID, variantIndex, cfg, started); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendScoreRecords bulk-inserts score rows through the DuckDB appender.
func appendScoreRecords(ctx context.Context, db *sql.DB, experimentID string, variantIndex int, cfg fixtureConfig, created time.Time) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	appender, err := newScoreAppender(conn)
	if err != nil {
		return err
	}
	defer appender.Close()

	ordinal := 0
	for exampleIndex := 0; exampleIndex < cfg.Examples; exampleIndex++ {
		exampleID := fmt.Sprintf("e%04d", exampleIndex+1)
		for _, evaluator := range cfg.Evaluators {
			// Deterministic score pattern with per-variant skew.
			pass := (exampleIndex+variantIndex)%3 != 0
			score := 0.0
			if pass {
				score = 1.0
			}
			var errText any
			if (exampleIndex+variantIndex)%7 == 0 {
				errText = "variant timeout: context deadline exceeded"
			}
			if err := appender.AppendRow(
				deterministicID(experimentID+"-record", ordinal),
				deterministicID(experimentID+"-record-key", ordinal),
				experimentID,
				exampleID,
				evaluator,
				score,
				pass,
				errText,
				nil,
				created,
			); err != nil {
				return fmt.Errorf("append score record: %w", err)
			}
			ordinal++
		}
	}
	return appender.Flush()
}

// newScoreAppender creates a DuckDB appender for bulk score-record inserts.
func newScoreAppender(conn *sql.Conn) (*duckdbdriver.Appender, error) {
	var appender *duckdbdriver.Appender
	if err := conn.Raw(func(driverConn any) error {
		rawConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("duckdb driver connection unavailable (got %T)", driverConn)
		}
		var err error
		appender, err = duckdbdriver.NewAppenderFromConn(rawConn, "", "score_records")
		return err
	}); err != nil {
		return nil, err
	}
	if appender == nil {
		return nil, fmt.Errorf("duckdb appender initialization failed")
	}
	return appender, nil
}

// removeIfExists deletes an existing fixture file so we always start fresh.
func removeIfExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove existing fixture: %w", err)
		}
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("stat fixture: %w", err)
}

// deterministicID generates a repeatable UUID for fixture rows.
func deterministicID(prefix string, index int) string {
	return uuid.NewSHA1(fixtureNamespace, []byte(fmt.Sprintf("%s-%d", prefix, index))).String()
}

// fixtureNamespace ensures stable UUIDs across fixture runs.
var fixtureNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
