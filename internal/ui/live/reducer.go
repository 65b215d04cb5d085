package live

import (
	"fmt"
	"time"

	"inboxeval/internal/runner"
)

// Reduce applies an example event to the UI state.
func Reduce(state State, event runner.ExampleEvent) State {
	state = ensureRow(state, event)
	state = applyExampleEvent(state, event)
	state.Counts = recount(state.Rows, state.Total)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, event runner.ExampleEvent) State {
	if event.Index < 0 {
		return state
	}
	if event.Index < len(state.Rows) {
		return state
	}
	rows := make([]ExampleRow, event.Index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = ExampleRow{Index: i}
	}
	state.Rows = rows
	return state
}

// applyExampleEvent updates a row with the given event.
func applyExampleEvent(state State, event runner.ExampleEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Index]
	if row.ID == "" {
		row.ID = event.ExampleID
	}
	if row.Subject == "" {
		row.Subject = event.Subject
	}
	row.Status = event.Type
	row.RetryAfterMs = event.RetryAfterMs
	switch event.Type {
	case runner.EventWaitingRateLimit, runner.EventWaitingLimiterError:
		row.RetryCount++
	case runner.EventRunning:
		if row.StartedAt.IsZero() {
			row.StartedAt = event.EmittedAt
		}
	}
	if isTerminalStatus(event.Type) {
		if !event.EmittedAt.IsZero() {
			row.FinishedAt = event.EmittedAt
		}
		row.Error = event.Error
	}
	state.Rows[event.Index] = row
	return state
}

// isTerminalStatus reports whether a status is final.
func isTerminalStatus(status runner.ExampleEventType) bool {
	switch status {
	case runner.EventPassed, runner.EventFailed, runner.EventErrored:
		return true
	default:
		return false
	}
}

// recount recomputes status counts for the current rows.
func recount(rows []ExampleRow, total int) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case runner.EventScheduled:
			counts.Queued++
		case runner.EventWaitingRateLimit, runner.EventWaitingLimiterError:
			counts.Waiting++
		case runner.EventRunning:
			counts.Running++
		case runner.EventPassed:
			counts.Done++
			counts.Passed++
		case runner.EventFailed:
			counts.Done++
			counts.Failed++
		case runner.EventErrored:
			counts.Done++
			counts.Errored++
		}
	}
	if remaining := total - len(rows); remaining > 0 {
		counts.Queued += remaining
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event runner.ExampleEvent) string {
	switch event.Type {
	case runner.EventWaitingRateLimit:
		if event.RetryAfterMs > 0 {
			return fmt.Sprintf("%s rate limited (retry in %s)", event.ExampleID, formatRetryAfter(event.RetryAfterMs))
		}
		return fmt.Sprintf("%s rate limited", event.ExampleID)
	case runner.EventWaitingLimiterError:
		return fmt.Sprintf("%s limiter error (retrying)", event.ExampleID)
	case runner.EventErrored:
		return fmt.Sprintf("%s errored: %s", event.ExampleID, event.Error)
	case runner.EventPassed:
		return fmt.Sprintf("%s passed", event.ExampleID)
	case runner.EventFailed:
		return fmt.Sprintf("%s failed", event.ExampleID)
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
