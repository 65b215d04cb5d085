package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"inboxeval/internal/runner"
)

// formatExampleID returns the display id for an example row.
func formatExampleID(row ExampleRow) string {
	if row.ID != "" {
		return row.ID
	}
	return formatIndex(row.Index)
}

// formatIndex formats an example index.
func formatIndex(index int) string {
	return "e" + pad2(index+1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatSubject truncates subject text for display.
func formatSubject(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}
	const limit = 60
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatStatus renders a styled status string for a row.
func formatStatus(row ExampleRow, noColor bool) string {
	return stylizeStatus(formatPrimaryStatus(row), row.Status, noColor)
}

// formatPrimaryStatus renders the primary status text.
func formatPrimaryStatus(row ExampleRow) string {
	switch row.Status {
	case runner.EventWaitingRateLimit:
		if row.RetryAfterMs > 0 {
			return "waiting rate limit (" + formatRetryAfter(row.RetryAfterMs) + ")"
		}
		return "waiting rate limit"
	case runner.EventWaitingLimiterError:
		return "waiting limiter error"
	default:
		return statusLabel(row.Status)
	}
}

// statusLabel maps status codes to display labels.
func statusLabel(status runner.ExampleEventType) string {
	switch status {
	case "":
		return "queued"
	case runner.EventScheduled:
		return "scheduled"
	case runner.EventRunning:
		return "running"
	case runner.EventPassed:
		return "passed"
	case runner.EventFailed:
		return "failed"
	case runner.EventErrored:
		return "errored"
	default:
		return string(status)
	}
}

// formatRetryAfter renders retry delays in human readable units.
func formatRetryAfter(ms int) string {
	if ms <= 0 {
		return ""
	}
	return formatDuration(time.Duration(ms) * time.Millisecond)
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row ExampleRow, now time.Time) string {
	if !row.FinishedAt.IsZero() && !row.StartedAt.IsZero() {
		return row.FinishedAt.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	if !row.StartedAt.IsZero() {
		return now.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	return ""
}

// formatRetries formats retry counts for display.
func formatRetries(retries int) string {
	if retries <= 0 {
		return ""
	}
	return fmtInt(retries)
}

// formatExperimentEnd formats an experiment completion message.
func formatExperimentEnd(experiment string, partial bool, passed, total int) string {
	line := "Experiment " + experiment + " done (" + fmtInt(passed) + "/" + fmtInt(total) + " passed)"
	if partial {
		line = "Experiment " + experiment + " interrupted (" + fmtInt(passed) + "/" + fmtInt(total) + " passed)"
	}
	return line
}

// stylizeStatus applies status coloring when enabled.
func stylizeStatus(text string, status runner.ExampleEventType, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status runner.ExampleEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.EventPassed:
		color = lipgloss.Color("42")
	case runner.EventFailed:
		color = lipgloss.Color("220")
	case runner.EventErrored:
		color = lipgloss.Color("196")
	case runner.EventWaitingRateLimit, runner.EventWaitingLimiterError:
		color = lipgloss.Color("39")
	case runner.EventRunning:
		color = lipgloss.Color("33")
	case runner.EventScheduled:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
