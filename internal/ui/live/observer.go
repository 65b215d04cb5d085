// Package live renders a terminal UI for in-flight runs. The Controller
// implements runner.RunObserver and never blocks the runner: events that
// cannot be enqueued are dropped.
package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"inboxeval/internal/runner"
)

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(runID, commit string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Commit: commit})
}

// OnExperimentStart forwards experiment start events to the UI.
func (c *Controller) OnExperimentStart(experiment, variant string, total int) {
	c.send(Event{Kind: EventExperimentStart, Experiment: experiment, Variant: variant, Total: total})
}

// OnExampleEvent forwards example status updates to the UI.
func (c *Controller) OnExampleEvent(event runner.ExampleEvent) {
	c.send(Event{Kind: EventExample, Example: event})
}

// OnExperimentEnd forwards experiment completion events to the UI.
func (c *Controller) OnExperimentEnd(result runner.Result) {
	passed := 0
	for _, outcome := range result.Outcomes {
		if outcome.Pass() {
			passed++
		}
	}
	c.send(Event{
		Kind:       EventExperimentEnd,
		Experiment: result.Experiment,
		Variant:    result.Variant,
		Partial:    result.Partial,
		Passed:     passed,
		Total:      len(result.Outcomes),
	})
}

// OnRunEnd forwards run completion to the UI and closes it.
func (c *Controller) OnRunEnd(runner.ResultSet) {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
