package assemble

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dagforge/dagforge/internal/config"
	"github.com/dagforge/dagforge/internal/dag"
	"github.com/dagforge/dagforge/internal/keyword"
	"github.com/dagforge/dagforge/internal/manifest"
	"github.com/dagforge/dagforge/internal/template"
)

// autoNodeSet asks the engine to draw a node-set name from the
// sequence file instead of using a configured literal.
const autoNodeSet = "auto"

// PlannedArtifact is one file a task will render: a template, the
// output path relative to the task directory, and the keyword table
// the rendering will use.
type PlannedArtifact struct {
	Phase    string
	Node     string
	Template string
	Path     string
	Mode     fs.FileMode

	table template.Lookup
}

// TaskPlan is the fully resolved shape of one task's generation run.
// Planning performs every validation the engine knows how to do before
// a single byte is rendered: keyword resolution, unit chunking, phase
// parity, and output path collisions.
type TaskPlan struct {
	Workflow  string
	Task      string
	Platform  string
	RunID     string
	Dir       string
	DagFile   string
	NodeSet   string
	IdsPerJob int
	Units     []string
	Nodes     []dag.Node
	Artifacts []PlannedArtifact

	preSubmit     string
	postSubmit    string
	workerSubmits []string
}

// WorkerCount returns the number of worker nodes the DAG will carry.
func (p *TaskPlan) WorkerCount() int {
	return len(p.Nodes)
}

// relPaths returns every output path the plan will commit, manifest
// included, relative to the task directory.
func (p *TaskPlan) relPaths() []string {
	out := make([]string, 0, len(p.Artifacts)+2)
	for _, a := range p.Artifacts {
		out = append(out, a.Path)
	}
	return append(out, p.DagFile, manifest.Filename)
}

// PlanTask resolves one task into a TaskPlan without writing anything.
func (a *Assembler) PlanTask(workflowName, taskName string) (*TaskPlan, error) {
	wf, err := a.doc.Workflow(workflowName)
	if err != nil {
		return nil, err
	}
	task, err := wf.Task(taskName)
	if err != nil {
		return nil, err
	}
	platformName, err := wf.PlatformName()
	if err != nil {
		return nil, err
	}
	platform, err := wf.Platform()
	if err != nil {
		return nil, err
	}

	platScope, err := platformScope(platform)
	if err != nil {
		return nil, err
	}
	wfScope, err := wf.Keywords()
	if err != nil {
		return nil, err
	}
	taskScope, err := task.Keywords()
	if err != nil {
		return nil, err
	}

	nodeSet, err := a.resolveNodeSet(task, platform)
	if err != nil {
		return nil, err
	}
	nodeSetScope := keyword.Scope{}
	if nodeSet != "" {
		nodeSetScope["NODE_SET"] = nodeSet
	}

	units, err := a.loadUnits(task)
	if err != nil {
		return nil, err
	}
	idsPerJob, err := a.resolveIdsPerJob(task, platform)
	if err != nil {
		return nil, err
	}
	nodes, err := dag.Chunk(len(units), idsPerJob)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", taskName, err)
	}
	if err := dag.Assign(nodes, units); err != nil {
		return nil, fmt.Errorf("task %s: %w", taskName, err)
	}

	facts := keyword.Scope{
		"TASK_NAME":     taskName,
		"WORKFLOW_NAME": workflowName,
		"PLATFORM_NAME": platformName,
		"RUN_ID":        a.runID,
		"TOTAL_UNITS":   strconv.Itoa(len(units)),
		"NODE_COUNT":    strconv.Itoa(len(nodes)),
		"IDS_PER_JOB":   strconv.Itoa(idsPerJob),
	}

	// Precedence chain, lowest first. Phase keywords and the final
	// generator facts are appended per table below.
	chain := []keyword.Scope{a.defaults, keyword.EnvScope(), platScope, wfScope, taskScope, nodeSetScope}
	taskTable := resolveChain(chain, a.opts.Overrides, facts)

	dir, err := a.resolveOutputDir(task, platform, taskTable)
	if err != nil {
		return nil, err
	}
	dagRel, err := a.resolveDagFile(task, taskTable)
	if err != nil {
		return nil, err
	}

	phases, err := task.Phases()
	if err != nil {
		return nil, err
	}
	tables := make(map[config.PhaseKind]*keyword.Table, len(phases))
	for _, phase := range phases {
		phaseScope, err := phase.Keywords()
		if err != nil {
			return nil, err
		}
		tables[phase.Kind] = resolveChain(chain, phaseScope, a.opts.Overrides, facts)
	}
	if err := checkPhaseParity(taskName, tables); err != nil {
		return nil, err
	}

	plan := &TaskPlan{
		Workflow:  workflowName,
		Task:      taskName,
		Platform:  platformName,
		RunID:     a.runID,
		Dir:       dir,
		DagFile:   dagRel,
		NodeSet:   nodeSet,
		IdsPerJob: idsPerJob,
		Units:     units,
		Nodes:     nodes,
	}
	if err := a.planArtifacts(plan, phases, tables); err != nil {
		return nil, err
	}
	if err := checkTaskPaths(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// planArtifacts expands every phase's output paths and records the
// render list. Worker outputs are expanded once per node with that
// node's facts, so $DAG_NODE in the configured path yields distinct
// per-node files.
func (a *Assembler) planArtifacts(plan *TaskPlan, phases []*config.Phase, tables map[config.PhaseKind]*keyword.Table) error {
	for _, phase := range phases {
		scriptTpl, err := phase.ScriptTemplate()
		if err != nil {
			return err
		}
		scriptOut, err := phase.ScriptOutput()
		if err != nil {
			return err
		}
		submitTpl, err := phase.SubmitTemplate()
		if err != nil {
			return err
		}
		submitOut, err := phase.SubmitOutput()
		if err != nil {
			return err
		}

		table := tables[phase.Kind]
		if phase.Kind == config.PhaseWorker {
			plan.workerSubmits = make([]string, len(plan.Nodes))
			for i, node := range plan.Nodes {
				nodeTable := table.Extend(nodeFacts(node))
				if _, err := a.planOne(plan, phase, node.Name, scriptTpl, scriptOut, template.ModeScript, nodeTable); err != nil {
					return err
				}
				submit, err := a.planOne(plan, phase, node.Name, submitTpl, submitOut, template.ModeData, nodeTable)
				if err != nil {
					return err
				}
				plan.workerSubmits[i] = relToDag(plan.DagFile, submit)
			}
			continue
		}

		_, err = a.planOne(plan, phase, "", scriptTpl, scriptOut, template.ModeScript, table)
		if err != nil {
			return err
		}
		submit, err := a.planOne(plan, phase, "", submitTpl, submitOut, template.ModeData, table)
		if err != nil {
			return err
		}
		switch phase.Kind {
		case config.PhasePre:
			plan.preSubmit = relToDag(plan.DagFile, submit)
		case config.PhasePost:
			plan.postSubmit = relToDag(plan.DagFile, submit)
		}
	}
	return nil
}

// planOne expands one output path and appends the artifact. Returns
// the expanded path relative to the task directory.
func (a *Assembler) planOne(plan *TaskPlan, phase *config.Phase, node, tpl, out string, mode fs.FileMode, table *keyword.Table) (string, error) {
	expanded, err := table.Expand(out)
	if err != nil {
		return "", fmt.Errorf("task %s: %s output path %q: %w", plan.Task, phase.Kind, out, err)
	}
	plan.Artifacts = append(plan.Artifacts, PlannedArtifact{
		Phase:    string(phase.Kind),
		Node:     node,
		Template: a.doc.ResolvePath(tpl),
		Path:     expanded,
		Mode:     mode,
		table:    table,
	})
	return expanded, nil
}

// nodeFacts is the per-worker generator scope. UNIT_LAST is the last
// unit index the node owns, inclusive.
func nodeFacts(n dag.Node) keyword.Scope {
	return keyword.Scope{
		"DAG_NODE":   n.Name,
		"UNIT_FIRST": strconv.Itoa(n.First),
		"UNIT_LAST":  strconv.Itoa(n.Last - 1),
		"UNIT_COUNT": strconv.Itoa(n.Count()),
		"UNIT_IDS":   strings.Join(n.Units, " "),
	}
}

// sharedIdentityKeywords must resolve identically in every phase of a
// task; the generated jobs otherwise land on disjoint node sets.
var sharedIdentityKeywords = []string{"NODE_SET", "FILE_SYSTEM_DOMAIN"}

func checkPhaseParity(task string, tables map[config.PhaseKind]*keyword.Table) error {
	pre := tables[config.PhasePre]
	for _, key := range sharedIdentityKeywords {
		want, _ := pre.Lookup(key)
		for _, kind := range []config.PhaseKind{config.PhaseWorker, config.PhasePost} {
			got, _ := tables[kind].Lookup(key)
			if got != want {
				return &NodeSetMismatchError{
					Task:      task,
					Keyword:   key,
					Phase:     string(kind),
					PreValue:  want,
					PostValue: got,
				}
			}
		}
	}
	return nil
}

// checkTaskPaths rejects artifact paths that escape the task directory
// or collide with each other or with the manifest.
func checkTaskPaths(plan *TaskPlan) error {
	seen := map[string]struct{}{manifest.Filename: {}}
	paths := make([]string, 0, len(plan.Artifacts)+1)
	for _, a := range plan.Artifacts {
		paths = append(paths, a.Path)
	}
	paths = append(paths, plan.DagFile)

	for _, rel := range paths {
		if rel == "" || !filepath.IsLocal(rel) {
			return fmt.Errorf("task %s: artifact path %q escapes the task output directory", plan.Task, rel)
		}
		clean := filepath.Clean(rel)
		if _, taken := seen[clean]; taken {
			return &OutputCollisionError{Path: filepath.Join(plan.Dir, clean), Tasks: []string{plan.Task}}
		}
		seen[clean] = struct{}{}
	}
	return nil
}

func (a *Assembler) resolveOutputDir(task *config.Task, platform *config.Platform, table *keyword.Table) (string, error) {
	raw, err := task.OutputDir()
	if err != nil {
		return "", err
	}
	dir, err := table.Expand(raw)
	if err != nil {
		return "", fmt.Errorf("task %s: outputDir %q: %w", task.Name, raw, err)
	}
	if !filepath.IsAbs(dir) {
		root, err := a.resolveOutputRoot(platform)
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("task %s: resolve output directory: %w", task.Name, err)
	}
	return abs, nil
}

func (a *Assembler) resolveOutputRoot(platform *config.Platform) (string, error) {
	root := a.opts.OutputRoot
	if root == "" {
		dr, ok, err := platform.DefaultRoot()
		if err != nil {
			return "", err
		}
		if ok {
			root = dr
		}
	}
	if root == "" {
		return ".", nil
	}
	expanded, err := keyword.ExpandEnv(root)
	if err != nil {
		return "", fmt.Errorf("output root %q: %w", root, err)
	}
	return expanded, nil
}

func (a *Assembler) resolveDagFile(task *config.Task, table *keyword.Table) (string, error) {
	raw, err := task.DagFile()
	if err != nil {
		return "", err
	}
	rel, err := table.Expand(raw)
	if err != nil {
		return "", fmt.Errorf("task %s: dagFile %q: %w", task.Name, raw, err)
	}
	return rel, nil
}

func (a *Assembler) resolveNodeSet(task *config.Task, platform *config.Platform) (string, error) {
	value := a.opts.NodeSet
	if value == "" {
		v, ok, err := task.NodeSet()
		if err != nil {
			return "", err
		}
		if ok {
			value = v
		}
	}
	if value == autoNodeSet {
		drawn, err := a.drawNodeSet()
		if err != nil {
			return "", fmt.Errorf("task %s: %w", task.Name, err)
		}
		return drawn, nil
	}
	if value == "" {
		required, err := platform.NodeSetRequired()
		if err != nil {
			return "", err
		}
		if required {
			return "", fmt.Errorf("task %s: platform %s requires a node set: config key nodeSet is missing", task.Name, platform.Name)
		}
	}
	return value, nil
}

func (a *Assembler) resolveIdsPerJob(task *config.Task, platform *config.Platform) (int, error) {
	if a.opts.IdsPerJob != 0 {
		return a.opts.IdsPerJob, nil
	}
	if v, ok, err := task.IdsPerJob(); err != nil {
		return 0, err
	} else if ok {
		return v, nil
	}
	if v, ok, err := platform.IdsPerJob(); err != nil {
		return 0, err
	} else if ok {
		return v, nil
	}
	return 0, nil
}

// loadUnits resolves the task's work-unit identifier list, honoring
// the command-line input file override.
func (a *Assembler) loadUnits(task *config.Task) ([]string, error) {
	if a.opts.InputFile != "" {
		return readUnitFile(a.opts.InputFile)
	}
	if path, ok, err := task.InputFile(); err != nil {
		return nil, err
	} else if ok {
		return readUnitFile(a.doc.ResolvePath(path))
	}
	if n, ok, err := task.TotalUnits(); err != nil {
		return nil, err
	} else if ok {
		if n < 0 {
			return nil, fmt.Errorf("task %s: negative totalUnits %d", task.Name, n)
		}
		ids := make([]string, n)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("task %s: missing unit source: config key inputFile or totalUnits required", task.Name)
}

// readUnitFile reads one unit identifier per line. Blank lines and
// lines starting with # are skipped.
func readUnitFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open unit input file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read unit input file %s: %w", path, err)
	}
	return ids, nil
}

// platformScope flattens a platform's fields and free-form keywords
// into one scope. Path-like fields may reference environment variables.
func platformScope(p *config.Platform) (keyword.Scope, error) {
	scope, err := p.Keywords()
	if err != nil {
		return nil, err
	}
	if scope == nil {
		scope = keyword.Scope{}
	}

	setExpanded := func(name, value, field string) error {
		expanded, err := keyword.ExpandEnv(value)
		if err != nil {
			return fmt.Errorf("platform %s: %s: %w", p.Name, field, err)
		}
		scope[name] = expanded
		return nil
	}

	if v, ok, err := p.UserName(); err != nil {
		return nil, err
	} else if ok {
		scope["USER_NAME"] = v
	}
	if v, ok, err := p.UserHome(); err != nil {
		return nil, err
	} else if ok {
		if err := setExpanded("USER_HOME", v, "userHome"); err != nil {
			return nil, err
		}
	}
	if v, ok, err := p.LocalScratch(); err != nil {
		return nil, err
	} else if ok {
		if err := setExpanded("LOCAL_SCRATCH", v, "localScratch"); err != nil {
			return nil, err
		}
	}
	if v, ok, err := p.DataDirectory(); err != nil {
		return nil, err
	} else if ok {
		if err := setExpanded("DATA_DIRECTORY", v, "dataDirectory"); err != nil {
			return nil, err
		}
	}
	if v, ok, err := p.SearchPath(); err != nil {
		return nil, err
	} else if ok {
		if err := setExpanded("SEARCH_PATH", v, "searchPath"); err != nil {
			return nil, err
		}
	}
	if v, ok, err := p.FileSystemDomain(); err != nil {
		return nil, err
	} else if ok {
		scope["FILE_SYSTEM_DOMAIN"] = v
	}
	if v, ok, err := p.IdsPerJob(); err != nil {
		return nil, err
	} else if ok {
		scope["IDS_PER_JOB"] = strconv.Itoa(v)
	}
	scheduler, err := p.Scheduler()
	if err != nil {
		return nil, err
	}
	scope["SCHEDULER"] = scheduler
	return scope, nil
}

func resolveChain(chain []keyword.Scope, extra ...keyword.Scope) *keyword.Table {
	scopes := make([]keyword.Scope, 0, len(chain)+len(extra))
	scopes = append(scopes, chain...)
	scopes = append(scopes, extra...)
	return keyword.Resolve(scopes...)
}

// relToDag rewrites an output path relative to the DAG file's
// directory, which is how the scheduler resolves JOB submit paths.
func relToDag(dagRel, submitRel string) string {
	rel, err := filepath.Rel(filepath.Dir(dagRel), submitRel)
	if err != nil {
		return submitRel
	}
	return rel
}
