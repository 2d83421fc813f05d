package tui

import (
	"fmt"
	"strings"
	"time"
)

// renderMain renders the live progress view
func (m Model) renderMain() string {
	var b strings.Builder

	title := m.styles.Title.Render("⚙ dagforge generate")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.styles.Muted.Render("Workflow: "))
	b.WriteString(m.styles.Subtitle.Render(m.workflow))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Run ID:   "))
	b.WriteString(m.styles.Subtitle.Render(m.runID))
	b.WriteString("\n\n")

	b.WriteString(m.renderTaskBox())
	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return b.String()
}

// renderTaskBox renders one progress line per task inside a border
func (m Model) renderTaskBox() string {
	var b strings.Builder

	header := fmt.Sprintf("%d/%d tasks finished, %s elapsed",
		m.finishedTasks(), len(m.tasks), m.elapsed().Round(time.Second))
	b.WriteString(m.styles.Status.Render(header))
	b.WriteString("\n\n")

	for _, task := range m.tasks {
		icon := m.statusStyle(task.status).Render(m.statusIcon(task.status))
		b.WriteString(fmt.Sprintf("%s %s", icon, task.name))

		switch task.status {
		case taskRunning:
			b.WriteString(m.styles.Muted.Render(
				fmt.Sprintf("  %s", m.renderArtifactBar(task))))
		case taskDone:
			b.WriteString(m.styles.Muted.Render(
				fmt.Sprintf("  %d artifacts", task.artifacts)))
			if m.verbose && task.dir != "" {
				b.WriteString(m.styles.Muted.Render("  " + task.dir))
			}
		case taskFailed:
			b.WriteString("  " + m.styles.Error.Render(truncate(task.lastError, m.errorWidth())))
		}
		b.WriteString("\n")
	}

	return m.styles.Border.Render(strings.TrimRight(b.String(), "\n"))
}

// renderArtifactBar renders per-task artifact progress
func (m Model) renderArtifactBar(task taskState) string {
	if task.artifacts == 0 {
		return "planning"
	}

	barWidth := 20
	filled := task.rendered * barWidth / task.artifacts
	if filled > barWidth {
		filled = barWidth
	}

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat("░", barWidth-filled))
	bar.WriteString("]")
	bar.WriteString(fmt.Sprintf(" %d/%d", task.rendered, task.artifacts))
	return bar.String()
}

// renderComplete renders the final screen shown before quitting
func (m Model) renderComplete() string {
	var b strings.Builder

	if m.failed == 0 {
		b.WriteString(m.styles.Success.Render(
			fmt.Sprintf("✓ Run %s complete", m.runID)))
	} else {
		b.WriteString(m.styles.Error.Render(
			fmt.Sprintf("✗ Run %s: %d of %d task(s) failed", m.runID, m.failed, len(m.tasks))))
	}
	b.WriteString("\n")

	for _, task := range m.tasks {
		icon := m.statusStyle(task.status).Render(m.statusIcon(task.status))
		line := fmt.Sprintf("%s %s", icon, task.name)
		if task.status == taskDone && task.dir != "" {
			line += m.styles.Muted.Render("  " + task.dir)
		}
		if task.status == taskFailed {
			line += "  " + m.styles.Error.Render(truncate(task.lastError, m.errorWidth()))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Muted.Render(
		fmt.Sprintf("\nFinished in %s", m.elapsed().Round(time.Second))))
	b.WriteString("\n")

	return b.String()
}

// renderHelpLine renders the keybinding hint line
func (m Model) renderHelpLine() string {
	hints := []string{
		keys.Verbose.Help().Key + " " + keys.Verbose.Help().Desc,
		keys.Quit.Help().Key + " " + keys.Quit.Help().Desc,
	}
	return m.styles.Help.Render(strings.Join(hints, " · "))
}

func (m Model) errorWidth() int {
	if m.width > 20 {
		return m.width - 10
	}
	return 60
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
