package resultstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inboxeval/internal/runner"
)

// IngestResultSet writes one run and all of its experiments and score
// records. Safe to call repeatedly for the same set.
func IngestResultSet(ctx context.Context, db *sql.DB, set runner.ResultSet) error {
	if db == nil {
		return errors.New("resultstore: db is nil")
	}
	if set.RunID == "" {
		return errors.New("resultstore: run ID is empty")
	}
	if err := upsertRun(ctx, db, set); err != nil {
		return err
	}
	for _, experiment := range set.Experiments {
		experimentID, err := upsertExperiment(ctx, db, set.RunID, experiment)
		if err != nil {
			return err
		}
		for _, record := range experiment.Records() {
			if err := upsertScoreRecord(ctx, db, experimentID, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func upsertRun(ctx context.Context, db *sql.DB, set runner.ResultSet) error {
	if _, err := db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, suite, commit_id, started_at, finished_at, partial)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO NOTHING`,
		set.RunID,
		nullableText(set.Suite),
		nullableText(set.Commit),
		set.StartedAt,
		set.FinishedAt,
		set.Partial,
	); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

func upsertExperiment(ctx context.Context, db *sql.DB, runID string, experiment runner.Result) (string, error) {
	key, err := FingerprintJSON(map[string]interface{}{
		"run_id":  runID,
		"name":    experiment.Experiment,
		"variant": experiment.Variant,
	})
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := db.ExecContext(
		ctx,
		`INSERT INTO experiments (
		   experiment_id, experiment_key, run_id, name, variant, suite,
		   concurrency_limit, partial, started_at, finished_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (experiment_key) DO NOTHING`,
		id,
		key,
		runID,
		experiment.Experiment,
		experiment.Variant,
		nullableText(experiment.Suite),
		experiment.ConcurrencyLimit,
		experiment.Partial,
		experiment.StartedAt,
		experiment.FinishedAt,
	); err != nil {
		return "", fmt.Errorf("upsert experiment: %w", err)
	}
	outID, err := lookupID(ctx, db, "experiments", "experiment_id", "experiment_key", key)
	if err != nil {
		return "", fmt.Errorf("lookup experiment id: %w", err)
	}
	return outID, nil
}

func upsertScoreRecord(ctx context.Context, db *sql.DB, experimentID string, record runner.ScoreRecord) error {
	var diagnostics interface{}
	if len(record.Diagnostics) > 0 {
		canonical, err := CanonicalJSON(record.Diagnostics)
		if err != nil {
			return err
		}
		diagnostics = string(canonical)
	}
	key, err := FingerprintJSON(map[string]interface{}{
		"experiment_id": experimentID,
		"example_id":    record.ExampleID,
		"evaluator":     record.Evaluator,
	})
	if err != nil {
		return err
	}
	id := uuid.NewString()
	if _, err := db.ExecContext(
		ctx,
		`INSERT INTO score_records (
		   record_id, record_key, experiment_id, example_id, evaluator,
		   score, pass, error, diagnostics
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (record_key) DO NOTHING`,
		id,
		key,
		experimentID,
		record.ExampleID,
		record.Evaluator,
		record.Score,
		record.Pass,
		nullableText(record.Error),
		diagnostics,
	); err != nil {
		return fmt.Errorf("upsert score record: %w", err)
	}
	return nil
}

// nullableText converts an optional string into a SQL argument.
func nullableText(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// lookupID fetches a single ID column value for a row keyed by keyColumn.
func lookupID(ctx context.Context, db *sql.DB, table, idColumn, keyColumn, key string) (string, error) {
	query := fmt.Sprintf("SELECT CAST(%s AS VARCHAR) FROM %s WHERE %s = ?", idColumn, table, keyColumn)
	var id string
	if err := db.QueryRowContext(ctx, query, key).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
