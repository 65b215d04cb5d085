package runner

import "time"

// ResultSet is the artifact of one full run: every experiment the run
// executed plus identifying metadata. Serialized as results.json.
type ResultSet struct {
	RunID       string     `json:"run_id"`
	Suite       string     `json:"suite,omitempty"`
	Commit      string     `json:"commit,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	Partial     bool       `json:"partial,omitempty"`
	Experiments []Result   `json:"experiments"`
	Summary     RunSummary `json:"summary"`
}

// RunSummary aggregates a run's experiments for quick display.
type RunSummary struct {
	ExperimentsTotal int     `json:"experiments_total"`
	ExamplesTotal    int     `json:"examples_total"`
	ExamplesPassed   int     `json:"examples_passed"`
	ExamplesFailed   int     `json:"examples_failed"`
	FailureCount     int     `json:"failure_count"`
	MeanScore        float64 `json:"mean_score"`
}

// Summarize reduces experiments into a RunSummary.
func Summarize(experiments []Result) RunSummary {
	summary := RunSummary{ExperimentsTotal: len(experiments)}
	var scoreSum float64
	var recordCount int
	for _, experiment := range experiments {
		for _, outcome := range experiment.Outcomes {
			summary.ExamplesTotal++
			if outcome.Pass() {
				summary.ExamplesPassed++
			} else {
				summary.ExamplesFailed++
			}
		}
		for _, record := range experiment.Records() {
			scoreSum += record.Score
			recordCount++
			if record.Error != "" {
				summary.FailureCount++
			}
		}
	}
	if recordCount > 0 {
		summary.MeanScore = scoreSum / float64(recordCount)
	}
	return summary
}
