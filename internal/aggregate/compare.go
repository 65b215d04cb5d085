package aggregate

import (
	"fmt"
	"sort"
	"strings"
)

// Delta is the per-variant difference between two reports.
type Delta struct {
	Variant      string  `json:"variant"`
	BaseMean     float64 `json:"base_mean"`
	HeadMean     float64 `json:"head_mean"`
	MeanDelta    float64 `json:"mean_delta"`
	BaseFailures int     `json:"base_failures"`
	HeadFailures int     `json:"head_failures"`
	InBase       bool    `json:"in_base"`
	InHead       bool    `json:"in_head"`
}

// Compare diffs two reports variant by variant, sorted by variant name.
// Variants present on only one side are still listed.
func Compare(base, head Report) []Delta {
	names := map[string]bool{}
	for name := range base {
		names[name] = true
	}
	for name := range head {
		names[name] = true
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	deltas := make([]Delta, 0, len(ordered))
	for _, name := range ordered {
		baseSummary, inBase := base[name]
		headSummary, inHead := head[name]
		deltas = append(deltas, Delta{
			Variant:      name,
			BaseMean:     baseSummary.MeanScore,
			HeadMean:     headSummary.MeanScore,
			MeanDelta:    headSummary.MeanScore - baseSummary.MeanScore,
			BaseFailures: baseSummary.FailureCount,
			HeadFailures: headSummary.FailureCount,
			InBase:       inBase,
			InHead:       inHead,
		})
	}
	return deltas
}

// FormatReport renders one report as an aligned text table.
func FormatReport(report Report) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%-24s %10s %10s %10s\n", "VARIANT", "MEAN", "FAILURES", "TOTAL")
	for _, name := range report.Variants() {
		summary := report[name]
		fmt.Fprintf(&builder, "%-24s %10.3f %10d %10d\n",
			name, summary.MeanScore, summary.FailureCount, summary.TotalCount)
	}
	return builder.String()
}

// FormatComparison renders base/head deltas as an aligned text table.
func FormatComparison(deltas []Delta) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%-24s %10s %10s %10s %12s\n", "VARIANT", "BASE", "HEAD", "DELTA", "FAILURES")
	for _, delta := range deltas {
		base := "-"
		head := "-"
		if delta.InBase {
			base = fmt.Sprintf("%.3f", delta.BaseMean)
		}
		if delta.InHead {
			head = fmt.Sprintf("%.3f", delta.HeadMean)
		}
		fmt.Fprintf(&builder, "%-24s %10s %10s %+10.3f %6d -> %-4d\n",
			delta.Variant, base, head, delta.MeanDelta, delta.BaseFailures, delta.HeadFailures)
	}
	return builder.String()
}
