package config

import (
	"fmt"
)

// ValidateDocument checks the structural completeness of a loaded
// document: every workflow names a resolvable platform with a known
// scheduler, every task carries all three phases with full template
// and output pairs, and every task has a work-unit source. Semantic
// checks that need resolved keyword tables (node-set parity, output
// collisions) run later in the assembler, still before any rendering.
func ValidateDocument(d *Document) error {
	workflows, err := d.Workflows()
	if err != nil {
		return err
	}
	if len(workflows) == 0 {
		return fmt.Errorf("%s: document defines no workflows", d.Origin())
	}

	for _, wf := range workflows {
		platform, err := wf.Platform()
		if err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
		scheduler, err := platform.Scheduler()
		if err != nil {
			return fmt.Errorf("platform %s: %w", platform.Name, err)
		}
		if scheduler != SchedulerPBS && scheduler != SchedulerCondor {
			return fmt.Errorf("platform %s: unknown scheduler %q (want %s or %s)",
				platform.Name, scheduler, SchedulerPBS, SchedulerCondor)
		}

		tasks, err := wf.Tasks()
		if err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
		if len(tasks) == 0 {
			return fmt.Errorf("workflow %s: no tasks defined", wf.Name)
		}

		for _, task := range tasks {
			if err := validateTask(task); err != nil {
				return fmt.Errorf("workflow %s: task %s: %w", wf.Name, task.Name, err)
			}
		}
	}
	return nil
}

func validateTask(task *Task) error {
	_, hasInput, err := task.InputFile()
	if err != nil {
		return err
	}
	_, hasTotal, err := task.TotalUnits()
	if err != nil {
		return err
	}
	if !hasInput && !hasTotal {
		return fmt.Errorf("no work-unit source: set inputFile or totalUnits")
	}
	if hasInput && hasTotal {
		return fmt.Errorf("ambiguous work-unit source: set only one of inputFile or totalUnits")
	}

	// The value itself is validated by the chunker; here only the type.
	if _, _, err := task.IdsPerJob(); err != nil {
		return err
	}

	for _, kind := range PhaseKinds() {
		phase, err := task.Phase(kind)
		if err != nil {
			return err
		}
		pairs := []struct {
			what string
			get  func() (string, error)
		}{
			{"script template", phase.ScriptTemplate},
			{"script output", phase.ScriptOutput},
			{"submit template", phase.SubmitTemplate},
			{"submit output", phase.SubmitOutput},
		}
		for _, pair := range pairs {
			value, err := pair.get()
			if err != nil {
				return err
			}
			if value == "" {
				return fmt.Errorf("phase %s: empty %s", kind, pair.what)
			}
		}
		if _, err := phase.Keywords(); err != nil {
			return err
		}
	}

	if _, err := task.Keywords(); err != nil {
		return err
	}
	if _, err := task.OutputDir(); err != nil {
		return err
	}
	if _, err := task.DagFile(); err != nil {
		return err
	}
	if _, _, err := task.NodeSet(); err != nil {
		return err
	}
	return nil
}
