package ux

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dagforge/dagforge/internal/assemble"
	"github.com/dagforge/dagforge/internal/manifest"
)

// PlanView is the serializable shape of a dry-run plan. Its String
// method renders the table shown by the text format.
type PlanView struct {
	Workflow string    `json:"workflow" yaml:"workflow"`
	RunID    string    `json:"run_id" yaml:"runId"`
	Tasks    []PlanRow `json:"tasks" yaml:"tasks"`
}

// PlanRow summarizes one planned task
type PlanRow struct {
	Task      string `json:"task" yaml:"task"`
	NodeSet   string `json:"node_set,omitempty" yaml:"nodeSet,omitempty"`
	Workers   int    `json:"workers" yaml:"workers"`
	Units     int    `json:"units" yaml:"units"`
	Artifacts int    `json:"artifacts" yaml:"artifacts"`
	Output    string `json:"output" yaml:"output"`
}

// NewPlanView builds a PlanView from resolved task plans
func NewPlanView(workflow, runID string, plans []*assemble.TaskPlan) PlanView {
	view := PlanView{
		Workflow: workflow,
		RunID:    runID,
		Tasks:    make([]PlanRow, 0, len(plans)),
	}
	for _, p := range plans {
		view.Tasks = append(view.Tasks, PlanRow{
			Task:    p.Task,
			NodeSet: p.NodeSet,
			Workers: p.WorkerCount(),
			Units:   len(p.Units),
			// DAG and manifest commit alongside the rendered files.
			Artifacts: len(p.Artifacts) + 2,
			Output:    p.Dir,
		})
	}
	return view
}

// String renders the plan as an aligned table
func (v PlanView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow: %s\n", v.Workflow)
	fmt.Fprintf(&b, "Run ID:   %s\n\n", v.RunID)

	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TASK\tNODE SET\tWORKERS\tUNITS\tARTIFACTS\tOUTPUT")
	for _, row := range v.Tasks {
		nodeSet := row.NodeSet
		if nodeSet == "" {
			nodeSet = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			row.Task, nodeSet, row.Workers, row.Units, row.Artifacts, row.Output)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// RunView is the serializable outcome of a generation run
type RunView struct {
	RunID  string   `json:"run_id" yaml:"runId"`
	Tasks  []RunRow `json:"tasks" yaml:"tasks"`
	Failed int      `json:"failed" yaml:"failed"`
}

// RunRow summarizes one task's generation outcome
type RunRow struct {
	Task      string `json:"task" yaml:"task"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
	Artifacts int    `json:"artifacts" yaml:"artifacts"`
	Workers   int    `json:"workers" yaml:"workers"`
	Units     int    `json:"units" yaml:"units"`
	Duration  string `json:"duration" yaml:"duration"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRunView builds a RunView from a run report
func NewRunView(report *assemble.RunReport) RunView {
	view := RunView{
		RunID: report.RunID,
		Tasks: make([]RunRow, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		row := RunRow{
			Task:      res.Task,
			Output:    res.Dir,
			Artifacts: res.Artifacts,
			Workers:   res.Workers,
			Units:     res.Units,
			Duration:  res.Duration.Round(time.Millisecond).String(),
		}
		if res.Err != nil {
			row.Error = res.Err.Error()
			view.Failed++
		}
		view.Tasks = append(view.Tasks, row)
	}
	return view
}

// String renders the run outcome one task per line
func (v RunView) String() string {
	var b strings.Builder
	for _, row := range v.Tasks {
		if row.Error != "" {
			fmt.Fprintf(&b, "✗ %s: %s\n", row.Task, row.Error)
			continue
		}
		fmt.Fprintf(&b, "✓ %s: %d artifacts, %d workers, %d units in %s\n",
			row.Task, row.Artifacts, row.Workers, row.Units, row.Duration)
		fmt.Fprintf(&b, "  %s\n", row.Output)
	}
	if v.Failed > 0 {
		fmt.Fprintf(&b, "\n%d of %d task(s) failed (run %s)", v.Failed, len(v.Tasks), v.RunID)
	} else {
		fmt.Fprintf(&b, "\nRun %s complete", v.RunID)
	}
	return b.String()
}

// VerifyView is the serializable outcome of a manifest verification
type VerifyView struct {
	Dir     string     `json:"dir" yaml:"dir"`
	Task    string     `json:"task" yaml:"task"`
	RunID   string     `json:"run_id" yaml:"runId"`
	Checks  []CheckRow `json:"checks" yaml:"checks"`
	Drifted int        `json:"drifted" yaml:"drifted"`
}

// CheckRow is one verified artifact
type CheckRow struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// NewVerifyView builds a VerifyView from a verification report
func NewVerifyView(report *manifest.Report) VerifyView {
	view := VerifyView{
		Dir:    report.Dir,
		Task:   report.Manifest.Task,
		RunID:  report.Manifest.RunID,
		Checks: make([]CheckRow, 0, len(report.Checks)),
	}
	for _, check := range report.Checks {
		view.Checks = append(view.Checks, CheckRow{
			Path:   check.Path,
			Status: string(check.Status),
			Detail: check.Detail,
		})
		if check.Status != manifest.StatusOK {
			view.Drifted++
		}
	}
	return view
}

// String renders the verification outcome, drifted entries first
func (v VerifyView) String() string {
	var b strings.Builder
	if v.Drifted == 0 {
		fmt.Fprintf(&b, "✓ %s: %d artifact(s) match the manifest (run %s)", v.Dir, len(v.Checks), v.RunID)
		return b.String()
	}

	fmt.Fprintf(&b, "✗ %s: %d of %d artifact(s) drifted (run %s)\n\n", v.Dir, v.Drifted, len(v.Checks), v.RunID)
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PATH\tSTATUS\tDETAIL")
	for _, check := range v.Checks {
		if check.Status == string(manifest.StatusOK) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Path, check.Status, check.Detail)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
