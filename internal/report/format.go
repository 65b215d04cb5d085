package report

import "fmt"

// formatScore renders a score with fixed precision for tables.
func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}
