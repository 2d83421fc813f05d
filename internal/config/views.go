package config

import (
	"github.com/dagforge/dagforge/internal/keyword"
)

// PhaseKind names one of the three task phases.
type PhaseKind string

const (
	// PhasePre runs once before the workers.
	PhasePre PhaseKind = "preJob"
	// PhaseWorker runs once per DAG node.
	PhaseWorker PhaseKind = "workerJob"
	// PhasePost runs once after every worker finished.
	PhasePost PhaseKind = "postJob"
)

// PhaseKinds returns the phases in execution order.
func PhaseKinds() []PhaseKind {
	return []PhaseKind{PhasePre, PhaseWorker, PhasePost}
}

// Schedulers the engine knows how to describe artifacts for. The
// engine never interprets scheduler syntax; the value only selects
// which template set a platform points at.
const (
	SchedulerPBS    = "pbs"
	SchedulerCondor = "condor"
)

// Workflow is a typed view over workflows.<name>.
type Workflow struct {
	Name string

	doc  *Document
	node *Node
}

// WorkflowNames returns the workflow identifiers in document order.
func (d *Document) WorkflowNames() ([]string, error) {
	workflows, err := d.root.Get("workflows")
	if err != nil {
		return nil, err
	}
	return workflows.Keys(), nil
}

// Workflow returns the named workflow view.
func (d *Document) Workflow(name string) (*Workflow, error) {
	node, err := d.root.Get("workflows", name)
	if err != nil {
		return nil, err
	}
	return &Workflow{Name: name, doc: d, node: node}, nil
}

// Workflows returns every workflow in document order.
func (d *Document) Workflows() ([]*Workflow, error) {
	names, err := d.WorkflowNames()
	if err != nil {
		return nil, err
	}
	out := make([]*Workflow, 0, len(names))
	for _, name := range names {
		wf, err := d.Workflow(name)
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}

// PlatformName returns the platform this workflow generates for,
// honoring a load-time override.
func (w *Workflow) PlatformName() (string, error) {
	if w.doc.platformOverride != "" {
		return w.doc.platformOverride, nil
	}
	return w.node.GetString("platform")
}

// Platform resolves the workflow's platform view.
func (w *Workflow) Platform() (*Platform, error) {
	name, err := w.PlatformName()
	if err != nil {
		return nil, err
	}
	return w.doc.Platform(name)
}

// Keywords returns the workflow-level keyword scope.
func (w *Workflow) Keywords() (keyword.Scope, error) {
	return optionalKeywords(w.node)
}

// TaskNames returns the workflow's task identifiers in document order.
func (w *Workflow) TaskNames() ([]string, error) {
	tasks, err := w.node.Get("tasks")
	if err != nil {
		return nil, err
	}
	return tasks.Keys(), nil
}

// Task returns the named task view.
func (w *Workflow) Task(name string) (*Task, error) {
	node, err := w.node.Get("tasks", name)
	if err != nil {
		return nil, err
	}
	return &Task{Name: name, Workflow: w.Name, node: node}, nil
}

// Tasks returns every task in document order.
func (w *Workflow) Tasks() ([]*Task, error) {
	names, err := w.TaskNames()
	if err != nil {
		return nil, err
	}
	out := make([]*Task, 0, len(names))
	for _, name := range names {
		task, err := w.Task(name)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

// Task is a typed view over workflows.<wf>.tasks.<name>.
type Task struct {
	Name     string
	Workflow string

	node *Node
}

// IdsPerJob returns the task's batching size if declared.
func (t *Task) IdsPerJob() (int, bool, error) {
	return t.node.OptionalInt("idsPerJob")
}

// InputFile returns the path of the work-unit manifest if declared.
func (t *Task) InputFile() (string, bool, error) {
	return t.node.OptionalString("inputFile")
}

// TotalUnits returns the declared unit count if the task carries one
// instead of an input file.
func (t *Task) TotalUnits() (int, bool, error) {
	return t.node.OptionalInt("totalUnits")
}

// OutputDir returns the task's output directory, defaulting to the
// task name. The value may contain tokens; the assembler expands them.
func (t *Task) OutputDir() (string, error) {
	dir, ok, err := t.node.OptionalString("outputDir")
	if err != nil {
		return "", err
	}
	if !ok || dir == "" {
		return t.Name, nil
	}
	return dir, nil
}

// NodeSet returns the declared node-set identifier. The literal "auto"
// asks the engine to draw one from the sequence file.
func (t *Task) NodeSet() (string, bool, error) {
	return t.node.OptionalString("nodeSet")
}

// DagFile returns the DAG description filename, defaulting to
// <task>.dag.
func (t *Task) DagFile() (string, error) {
	name, ok, err := t.node.OptionalString("dagFile")
	if err != nil {
		return "", err
	}
	if !ok || name == "" {
		return t.Name + ".dag", nil
	}
	return name, nil
}

// Keywords returns the task-level keyword scope.
func (t *Task) Keywords() (keyword.Scope, error) {
	return optionalKeywords(t.node)
}

// Phase returns one of the task's three phases.
func (t *Task) Phase(kind PhaseKind) (*Phase, error) {
	node, err := t.node.Get(string(kind))
	if err != nil {
		return nil, err
	}
	return &Phase{Kind: kind, Task: t.Name, node: node}, nil
}

// Phases returns the three phases in execution order.
func (t *Task) Phases() ([]*Phase, error) {
	out := make([]*Phase, 0, 3)
	for _, kind := range PhaseKinds() {
		phase, err := t.Phase(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, phase)
	}
	return out, nil
}

// Phase is a typed view over one job phase of a task.
type Phase struct {
	Kind PhaseKind
	Task string

	node *Node
}

// ScriptTemplate returns the phase's script template path.
func (p *Phase) ScriptTemplate() (string, error) {
	return p.node.GetString("script", "template")
}

// ScriptOutput returns the phase's script output path, relative to the
// task output directory.
func (p *Phase) ScriptOutput() (string, error) {
	return p.node.GetString("script", "output")
}

// SubmitTemplate returns the phase's submit-file template path.
func (p *Phase) SubmitTemplate() (string, error) {
	return p.node.GetString("submit", "template")
}

// SubmitOutput returns the phase's submit-file output path, relative
// to the task output directory.
func (p *Phase) SubmitOutput() (string, error) {
	return p.node.GetString("submit", "output")
}

// Keywords returns the phase-scoped keyword overrides.
func (p *Phase) Keywords() (keyword.Scope, error) {
	return optionalKeywords(p.node)
}

// Platform is a typed view over platforms.<name>.
type Platform struct {
	Name string

	node *Node
}

// Platform returns the named platform view.
func (d *Document) Platform(name string) (*Platform, error) {
	node, err := d.root.Get("platforms", name)
	if err != nil {
		return nil, err
	}
	return &Platform{Name: name, node: node}, nil
}

// Scheduler returns the platform's scheduler flavor (pbs or condor).
func (p *Platform) Scheduler() (string, error) {
	return p.node.GetString("scheduler")
}

// DefaultRoot returns the root directory generated runs land under
// when no output root is given on the command line.
func (p *Platform) DefaultRoot() (string, bool, error) {
	return p.node.OptionalString("defaultRoot")
}

// LocalScratch returns the platform's scratch directory value.
func (p *Platform) LocalScratch() (string, bool, error) {
	return p.node.OptionalString("localScratch")
}

// DataDirectory returns the platform's data directory value.
func (p *Platform) DataDirectory() (string, bool, error) {
	return p.node.OptionalString("dataDirectory")
}

// FileSystemDomain returns the filesystem domain submit files bind to.
func (p *Platform) FileSystemDomain() (string, bool, error) {
	return p.node.OptionalString("fileSystemDomain")
}

// SearchPath returns the software search path exported to jobs.
func (p *Platform) SearchPath() (string, bool, error) {
	return p.node.OptionalString("searchPath")
}

// NodeSetRequired reports whether tasks on this platform must resolve
// a node-set identifier.
func (p *Platform) NodeSetRequired() (bool, error) {
	required, ok, err := p.node.OptionalBool("nodeSetRequired")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return required, nil
}

// IdsPerJob returns the platform-wide default batching size.
func (p *Platform) IdsPerJob() (int, bool, error) {
	return p.node.OptionalInt("idsPerJob")
}

// UserName returns the override for the generating user's name.
func (p *Platform) UserName() (string, bool, error) {
	return p.node.OptionalString("user", "name")
}

// UserHome returns the override for the generating user's home.
func (p *Platform) UserHome() (string, bool, error) {
	return p.node.OptionalString("user", "home")
}

// Keywords returns the platform-level keyword scope.
func (p *Platform) Keywords() (keyword.Scope, error) {
	return optionalKeywords(p.node)
}

// PlatformDef is the serializable shape of a platform file, written by
// the init wizard and read back through the tree loader.
type PlatformDef struct {
	Scheduler        string            `yaml:"scheduler"`
	DefaultRoot      string            `yaml:"defaultRoot,omitempty"`
	LocalScratch     string            `yaml:"localScratch,omitempty"`
	DataDirectory    string            `yaml:"dataDirectory,omitempty"`
	FileSystemDomain string            `yaml:"fileSystemDomain,omitempty"`
	SearchPath       string            `yaml:"searchPath,omitempty"`
	NodeSetRequired  bool              `yaml:"nodeSetRequired,omitempty"`
	IdsPerJob        int               `yaml:"idsPerJob,omitempty"`
	Keywords         map[string]string `yaml:"keywords,omitempty"`
}

func optionalKeywords(node *Node) (keyword.Scope, error) {
	child, ok := node.Child("keywords")
	if !ok || child.IsNull() {
		return keyword.Scope{}, nil
	}
	values, err := child.StringMap()
	if err != nil {
		return nil, err
	}
	return keyword.Scope(values), nil
}
