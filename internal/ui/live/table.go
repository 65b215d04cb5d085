package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the table layout before the first resize.
func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth sizes the subject column to fill the remaining width.
func columnsForWidth(width int) []table.Column {
	const fixed = 8 + 24 + 10 + 8
	subject := width - fixed - 10
	if subject < 20 {
		subject = 20
	}
	return []table.Column{
		{Title: "example", Width: 8},
		{Title: "subject", Width: subject},
		{Title: "status", Width: 24},
		{Title: "elapsed", Width: 10},
		{Title: "retries", Width: 8},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatExampleID(row),
			formatSubject(row.Subject),
			formatStatus(row, noColor),
			formatRowDuration(row, now),
			formatRetries(row.RetryCount),
		})
	}
	return rows
}
