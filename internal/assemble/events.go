package assemble

// Event is a progress notification emitted while a run executes.
// Sinks receive events from worker goroutines and must be safe for
// concurrent use.
type Event interface {
	event()
}

// TaskStarted announces that a task's artifacts are about to render.
type TaskStarted struct {
	Workflow  string
	Task      string
	Artifacts int
	Workers   int
}

// ArtifactRendered announces one staged artifact.
type ArtifactRendered struct {
	Task  string
	Phase string
	Path  string
}

// TaskCompleted announces a committed task.
type TaskCompleted struct {
	Task      string
	Dir       string
	Artifacts int
}

// TaskFailed announces an aborted task. No artifacts were committed.
type TaskFailed struct {
	Task string
	Err  error
}

func (TaskStarted) event()      {}
func (ArtifactRendered) event() {}
func (TaskCompleted) event()    {}
func (TaskFailed) event()       {}

// Sink consumes run events. A nil sink discards them.
type Sink func(Event)

func (s Sink) emit(e Event) {
	if s != nil {
		s(e)
	}
}
