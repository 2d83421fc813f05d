// Package tui renders live generation progress in the terminal and
// hosts the interactive prompts used by the platform wizard.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// keyMap defines the keyboard shortcuts
type keyMap struct {
	Quit    key.Binding
	Verbose key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Verbose: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "verbose"),
	),
}

// taskStatus tracks where a task is in its generation lifecycle
type taskStatus int

const (
	taskPending taskStatus = iota
	taskRunning
	taskDone
	taskFailed
)

// taskState is the per-task progress the view renders
type taskState struct {
	name      string
	status    taskStatus
	rendered  int
	artifacts int
	workers   int
	dir       string
	lastError string
}

// Model represents the generation progress display
type Model struct {
	workflow string
	runID    string

	tasks []taskState
	index map[string]int

	completed int
	failed    int
	startTime time.Time

	width    int
	height   int
	ready    bool
	quitting bool
	verbose  bool

	styles Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Help     lipgloss.Style
}

// NewModel creates a progress model for the named tasks
func NewModel(workflow, runID string, taskNames []string) Model {
	tasks := make([]taskState, len(taskNames))
	index := make(map[string]int, len(taskNames))
	for i, name := range taskNames {
		tasks[i] = taskState{name: name}
		index[name] = i
	}
	return Model{
		workflow:  workflow,
		runID:     runID,
		tasks:     tasks,
		index:     index,
		startTime: time.Now(),
		styles:    DefaultStyles(),
	}
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
	}
}

// Init initializes the TUI model (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case TaskStartedMsg:
		if i, ok := m.index[msg.Task]; ok {
			m.tasks[i].status = taskRunning
			m.tasks[i].artifacts = msg.Artifacts
			m.tasks[i].workers = msg.Workers
		}
		return m, nil

	case ArtifactRenderedMsg:
		if i, ok := m.index[msg.Task]; ok {
			m.tasks[i].rendered++
		}
		return m, nil

	case TaskCompletedMsg:
		if i, ok := m.index[msg.Task]; ok {
			m.tasks[i].status = taskDone
			m.tasks[i].dir = msg.Dir
			m.completed++
		}
		return m, nil

	case TaskFailedMsg:
		if i, ok := m.index[msg.Task]; ok {
			m.tasks[i].status = taskFailed
			m.tasks[i].lastError = msg.Error
			m.failed++
		}
		return m, nil

	case RunCompleteMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return m.renderComplete()
	}
	return m.renderMain()
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Verbose):
		m.verbose = !m.verbose
	}

	return m, nil
}

// Custom messages for generation events

// TaskStartedMsg indicates a task has begun rendering
type TaskStartedMsg struct {
	Task      string
	Artifacts int
	Workers   int
}

// ArtifactRenderedMsg indicates one artifact was staged
type ArtifactRenderedMsg struct {
	Task  string
	Phase string
	Path  string
}

// TaskCompletedMsg indicates a task committed all artifacts
type TaskCompletedMsg struct {
	Task      string
	Dir       string
	Artifacts int
}

// TaskFailedMsg indicates a task aborted
type TaskFailedMsg struct {
	Task  string
	Error string
}

// RunCompleteMsg indicates the whole run has finished
type RunCompleteMsg struct {
	Failed   int
	Duration time.Duration
}

// Helper functions

func (m Model) elapsed() time.Duration {
	return time.Since(m.startTime)
}

func (m Model) finishedTasks() int {
	return m.completed + m.failed
}

func (m Model) statusIcon(s taskStatus) string {
	switch s {
	case taskDone:
		return "✓"
	case taskFailed:
		return "✗"
	case taskRunning:
		return "⟳"
	default:
		return "·"
	}
}

func (m Model) statusStyle(s taskStatus) lipgloss.Style {
	switch s {
	case taskDone:
		return m.styles.Success
	case taskFailed:
		return m.styles.Error
	case taskRunning:
		return m.styles.Status
	default:
		return m.styles.Muted
	}
}
