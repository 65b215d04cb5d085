package runner

// Table is the row-per-example, column-per-evaluator view of one Result.
type Table struct {
	Columns []string
	Rows    []TableRow
}

// TableRow holds one example's scores keyed by evaluator name.
type TableRow struct {
	ExampleID string
	Subject   string
	Pass      bool
	Error     string
	Scores    map[string]float64
}

// Table converts the result into its tabular representation. Columns follow
// the evaluator order of the first outcome.
func (r Result) Table() Table {
	table := Table{}
	seen := map[string]bool{}
	for _, outcome := range r.Outcomes {
		row := TableRow{
			ExampleID: outcome.ExampleID,
			Subject:   outcome.Subject,
			Pass:      outcome.Pass(),
			Error:     outcome.Error,
			Scores:    make(map[string]float64, len(outcome.Scores)),
		}
		for _, score := range outcome.Scores {
			if !seen[score.Evaluator] {
				seen[score.Evaluator] = true
				table.Columns = append(table.Columns, score.Evaluator)
			}
			row.Scores[score.Evaluator] = score.Value
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
