package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a-h/templ"

	"inboxeval/internal/aggregate"
	"inboxeval/internal/runner"
)

const pageStyle = `body{font-family:ui-monospace,monospace;margin:2rem;color:#1a1a1a}
h1{font-size:1.3rem}h2{font-size:1.1rem;margin-top:2rem}
table{border-collapse:collapse;margin-top:0.5rem}
th,td{border:1px solid #ccc;padding:0.3rem 0.6rem;text-align:left}
th{background:#f2f2f2}
.pass{color:#0a7d32}.fail{color:#b3261e}
.meta{color:#666;font-size:0.9rem}`

// Page renders one or more runs as a full HTML document. With two runs the
// second is treated as head and a comparison section is included.
func Page(sets []runner.ResultSet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>inboxeval report</title>\n<style>%s</style>\n</head>\n<body>\n", pageStyle); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<h1>inboxeval report</h1>\n"); err != nil {
			return err
		}
		for _, set := range sets {
			if err := runSection(set).Render(ctx, w); err != nil {
				return err
			}
		}
		if len(sets) == 2 {
			if err := comparisonSection(sets[0], sets[1]).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// runSection renders one run's summary and per-experiment tables.
func runSection(set runner.ResultSet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		partial := ""
		if set.Partial {
			partial = " (partial)"
		}
		if _, err := fmt.Fprintf(w, "<h2>Run %s%s</h2>\n<p class=\"meta\">suite=%s commit=%s examples=%d passed=%d failed=%d mean=%s</p>\n",
			templ.EscapeString(set.RunID),
			partial,
			templ.EscapeString(set.Suite),
			templ.EscapeString(set.Commit),
			set.Summary.ExamplesTotal,
			set.Summary.ExamplesPassed,
			set.Summary.ExamplesFailed,
			formatScore(set.Summary.MeanScore),
		); err != nil {
			return err
		}
		if err := summaryTable(aggregate.Aggregate(set.Experiments...)).Render(ctx, w); err != nil {
			return err
		}
		for _, experiment := range set.Experiments {
			if err := experimentTable(experiment).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// summaryTable renders the per-variant aggregate table.
func summaryTable(report aggregate.Report) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<table>\n<tr><th>variant</th><th>mean score</th><th>failures</th><th>total</th></tr>\n"); err != nil {
			return err
		}
		for _, variant := range report.Variants() {
			summary := report[variant]
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
				templ.EscapeString(variant), formatScore(summary.MeanScore), summary.FailureCount, summary.TotalCount); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>\n")
		return err
	})
}

// experimentTable renders the row-per-example table for one experiment.
func experimentTable(result runner.Result) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		table := result.Table()
		if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n<table>\n<tr><th>example</th><th>subject</th>", templ.EscapeString(result.Experiment)); err != nil {
			return err
		}
		for _, column := range table.Columns {
			if _, err := fmt.Fprintf(w, "<th>%s</th>", templ.EscapeString(column)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<th>status</th><th>error</th></tr>\n"); err != nil {
			return err
		}
		for _, row := range table.Rows {
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td>",
				templ.EscapeString(row.ExampleID), templ.EscapeString(row.Subject)); err != nil {
				return err
			}
			for _, column := range table.Columns {
				if _, err := fmt.Fprintf(w, "<td>%s</td>", formatScore(row.Scores[column])); err != nil {
					return err
				}
			}
			status := "<td class=\"pass\">pass</td>"
			if !row.Pass {
				status = "<td class=\"fail\">fail</td>"
			}
			if _, err := fmt.Fprintf(w, "%s<td>%s</td></tr>\n", status, templ.EscapeString(row.Error)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>\n")
		return err
	})
}

// comparisonSection renders base/head variant deltas.
func comparisonSection(base, head runner.ResultSet) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		deltas := aggregate.Compare(
			aggregate.Aggregate(base.Experiments...),
			aggregate.Aggregate(head.Experiments...),
		)
		if _, err := fmt.Fprintf(w, "<h2>Comparison %s vs %s</h2>\n<table>\n<tr><th>variant</th><th>base</th><th>head</th><th>delta</th><th>failures</th></tr>\n",
			templ.EscapeString(base.RunID), templ.EscapeString(head.RunID)); err != nil {
			return err
		}
		for _, delta := range deltas {
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%+.3f</td><td>%d &rarr; %d</td></tr>\n",
				templ.EscapeString(delta.Variant),
				formatScore(delta.BaseMean),
				formatScore(delta.HeadMean),
				delta.MeanDelta,
				delta.BaseFailures,
				delta.HeadFailures); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>\n")
		return err
	})
}

// RenderHTML renders runs into an HTML string.
func RenderHTML(ctx context.Context, sets []runner.ResultSet) (string, error) {
	var builder strings.Builder
	if err := Page(sets).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// WriteHTML renders runs and writes the report file.
func WriteHTML(path string, sets []runner.ResultSet) error {
	html, err := RenderHTML(context.Background(), sets)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(html), 0o644)
}
