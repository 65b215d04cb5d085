package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inboxeval/internal/aggregate"
)

// RunRow is one stored run's identity.
type RunRow struct {
	RunID      string
	Suite      string
	Commit     string
	StartedAt  time.Time
	FinishedAt time.Time
	Partial    bool
}

// ListRuns returns stored runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]RunRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id,
		       coalesce(suite, ''),
		       coalesce(commit_id, ''),
		       started_at,
		       finished_at,
		       partial
		FROM runs
		ORDER BY started_at DESC, run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.RunID, &row.Suite, &row.Commit, &row.StartedAt, &row.FinishedAt, &row.Partial); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, row)
	}
	return runs, rows.Err()
}

// VariantSummaries reduces one run's stored records into an aggregate report.
func VariantSummaries(ctx context.Context, db *sql.DB, runID string) (aggregate.Report, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT variant, mean_score, failure_count, total_count
		FROM v_variant_summaries
		WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query variant summaries: %w", err)
	}
	defer rows.Close()

	report := aggregate.Report{}
	for rows.Next() {
		var variant string
		var summary aggregate.VariantSummary
		if err := rows.Scan(&variant, &summary.MeanScore, &summary.FailureCount, &summary.TotalCount); err != nil {
			return nil, fmt.Errorf("scan variant summary: %w", err)
		}
		report[variant] = summary
	}
	return report, rows.Err()
}

// RecordCount returns the number of stored score records for a run.
func RecordCount(ctx context.Context, db *sql.DB, runID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM score_records r
		JOIN experiments e ON e.experiment_id = r.experiment_id
		WHERE e.run_id = ?`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
