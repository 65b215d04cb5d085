// Package aggregate reduces experiment results into per-variant summary
// statistics and formats side-by-side comparisons. Aggregation is a pure
// reduction: rerunning it over the same results yields identical output
// regardless of the order records were produced in.
package aggregate

import (
	"sort"

	"inboxeval/internal/runner"
)

// VariantSummary holds the reduced statistics for one variant.
type VariantSummary struct {
	MeanScore    float64 `json:"mean_score"`
	FailureCount int     `json:"failure_count"`
	TotalCount   int     `json:"total_count"`
}

// Report maps variant names to their summaries.
type Report map[string]VariantSummary

// Aggregate reduces experiment results into one Report. Records are brought
// into canonical (variant, example, evaluator) order before summation so the
// execution schedule never leaks into the output.
func Aggregate(results ...runner.Result) Report {
	type keyed struct {
		variant string
		record  runner.ScoreRecord
	}
	var records []keyed
	for _, result := range results {
		for _, record := range result.Records() {
			records = append(records, keyed{variant: result.Variant, record: record})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].variant != records[j].variant {
			return records[i].variant < records[j].variant
		}
		if records[i].record.ExampleID != records[j].record.ExampleID {
			return records[i].record.ExampleID < records[j].record.ExampleID
		}
		return records[i].record.Evaluator < records[j].record.Evaluator
	})

	sums := map[string]float64{}
	report := Report{}
	for _, item := range records {
		summary := report[item.variant]
		summary.TotalCount++
		if item.record.Error != "" {
			summary.FailureCount++
		}
		sums[item.variant] += item.record.Score
		report[item.variant] = summary
	}
	for variant, summary := range report {
		if summary.TotalCount > 0 {
			summary.MeanScore = sums[variant] / float64(summary.TotalCount)
		}
		report[variant] = summary
	}
	return report
}

// Variants returns the report's variant names in sorted order.
func (r Report) Variants() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
