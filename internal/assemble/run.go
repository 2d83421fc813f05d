package assemble

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// TaskResult is the outcome of one task's generation.
type TaskResult struct {
	Workflow  string
	Task      string
	Dir       string
	Artifacts int
	Workers   int
	Units     int
	Duration  time.Duration
	Err       error
}

// RunReport aggregates per-task outcomes in configuration order.
type RunReport struct {
	RunID   string
	Results []*TaskResult
}

// Failed returns the results of tasks that produced no artifacts.
func (r *RunReport) Failed() []*TaskResult {
	var out []*TaskResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins every task failure into one error, nil when the run was
// fully successful.
func (r *RunReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// GenerateTask plans and generates a single task.
func (a *Assembler) GenerateTask(ctx context.Context, workflowName, taskName string) (*TaskResult, error) {
	plan, err := a.PlanTask(workflowName, taskName)
	if err != nil {
		return nil, err
	}
	res := a.executePlan(ctx, plan)
	return res, res.Err
}

// Plan resolves the selected tasks of a workflow without writing
// anything, all of them when the selection is empty. Per-task errors
// are joined so a single pass reports every problem; plans that did
// resolve are still returned for display.
func (a *Assembler) Plan(workflowName string, taskNames []string) ([]*TaskPlan, error) {
	wf, err := a.doc.Workflow(workflowName)
	if err != nil {
		return nil, err
	}
	if len(taskNames) == 0 {
		taskNames, err = wf.TaskNames()
		if err != nil {
			return nil, err
		}
	}
	taskNames = dedupe(taskNames)

	var errs []error
	plans := make([]*TaskPlan, 0, len(taskNames))
	for _, name := range taskNames {
		plan, err := a.PlanTask(workflowName, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plans = append(plans, plan)
	}
	if err := checkCrossTaskPaths(plans); err != nil {
		errs = append(errs, err)
	}
	return plans, errors.Join(errs...)
}

// Generate runs the selected tasks of a workflow, all of them when the
// selection is empty. Every task is planned before any task renders,
// so configuration errors and cross-task output collisions surface
// while the output tree is still untouched. Planned tasks then execute
// on a bounded worker pool; one task's failure never stops a sibling.
func (a *Assembler) Generate(ctx context.Context, workflowName string, taskNames []string) (*RunReport, error) {
	wf, err := a.doc.Workflow(workflowName)
	if err != nil {
		return nil, err
	}
	if len(taskNames) == 0 {
		taskNames, err = wf.TaskNames()
		if err != nil {
			return nil, err
		}
	}
	taskNames = dedupe(taskNames)

	plans := make([]*TaskPlan, 0, len(taskNames))
	planErrs := make(map[string]error)
	for _, name := range taskNames {
		plan, err := a.PlanTask(workflowName, name)
		if err != nil {
			planErrs[name] = err
			continue
		}
		plans = append(plans, plan)
	}
	if err := checkCrossTaskPaths(plans); err != nil {
		return nil, err
	}

	outcomes := cmap.New[*TaskResult]()
	sem := make(chan struct{}, a.opts.parallel())
	var wg sync.WaitGroup
	for _, plan := range plans {
		wg.Add(1)
		go func(p *TaskPlan) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes.Set(p.Task, a.executePlan(ctx, p))
		}(plan)
	}
	wg.Wait()

	report := &RunReport{RunID: a.runID}
	for _, name := range taskNames {
		if planErr, ok := planErrs[name]; ok {
			report.Results = append(report.Results, &TaskResult{
				Workflow: workflowName,
				Task:     name,
				Err:      planErr,
			})
			continue
		}
		if res, ok := outcomes.Get(name); ok {
			report.Results = append(report.Results, res)
		}
	}
	return report, nil
}

// checkCrossTaskPaths rejects runs where two tasks would commit to the
// same absolute path.
func checkCrossTaskPaths(plans []*TaskPlan) error {
	owners := make(map[string]string)
	for _, plan := range plans {
		for _, rel := range plan.relPaths() {
			abs := filepath.Join(plan.Dir, rel)
			if owner, ok := owners[abs]; ok && owner != plan.Task {
				return &OutputCollisionError{Path: abs, Tasks: []string{owner, plan.Task}}
			}
			owners[abs] = plan.Task
		}
	}
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
