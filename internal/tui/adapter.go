package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dagforge/dagforge/internal/assemble"
)

// Adapter bridges between the generation engine and the TUI
type Adapter struct {
	program *tea.Program
	model   *Model
	done    chan error
}

// NewAdapter creates a TUI adapter for one generation run
func NewAdapter(workflow, runID string, taskNames []string) *Adapter {
	model := NewModel(workflow, runID, taskNames)

	return &Adapter{
		model: &model,
		done:  make(chan error, 1),
	}
}

// Start starts the TUI program
func (a *Adapter) Start() error {
	a.program = tea.NewProgram(*a.model)

	go func() {
		_, err := a.program.Run()
		a.done <- err
	}()

	return nil
}

// Stop force-quits the TUI program
func (a *Adapter) Stop() {
	if a.program != nil {
		a.program.Quit()
	}
}

// Wait blocks until the program exits and returns its error
func (a *Adapter) Wait() error {
	if a.program == nil {
		return fmt.Errorf("TUI not started")
	}
	return <-a.done
}

// Sink returns an event sink that forwards generation events to the
// display. The engine calls it from worker goroutines; Program.Send is
// safe for concurrent use.
func (a *Adapter) Sink() assemble.Sink {
	return func(ev assemble.Event) {
		if a.program == nil {
			return
		}
		switch ev := ev.(type) {
		case assemble.TaskStarted:
			a.program.Send(TaskStartedMsg{
				Task:      ev.Task,
				Artifacts: ev.Artifacts,
				Workers:   ev.Workers,
			})
		case assemble.ArtifactRendered:
			a.program.Send(ArtifactRenderedMsg{
				Task:  ev.Task,
				Phase: ev.Phase,
				Path:  ev.Path,
			})
		case assemble.TaskCompleted:
			a.program.Send(TaskCompletedMsg{
				Task:      ev.Task,
				Dir:       ev.Dir,
				Artifacts: ev.Artifacts,
			})
		case assemble.TaskFailed:
			errMsg := ""
			if ev.Err != nil {
				errMsg = ev.Err.Error()
			}
			a.program.Send(TaskFailedMsg{
				Task:  ev.Task,
				Error: errMsg,
			})
		}
	}
}

// NotifyComplete tells the display the run has finished
func (a *Adapter) NotifyComplete(failed int, duration time.Duration) {
	if a.program != nil {
		a.program.Send(RunCompleteMsg{
			Failed:   failed,
			Duration: duration,
		})
	}
}
