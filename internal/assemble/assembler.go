// Package assemble turns a loaded workflow configuration into on-disk
// artifacts: phase scripts, scheduler submit files, the workload DAG
// description, and a generation manifest. Rendering is all-or-nothing
// per task; artifacts are staged and committed by rename, so a failed
// task leaves nothing behind.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dagforge/dagforge/internal/config"
	"github.com/dagforge/dagforge/internal/dag"
	"github.com/dagforge/dagforge/internal/ident"
	"github.com/dagforge/dagforge/internal/keyword"
	"github.com/dagforge/dagforge/internal/log"
	"github.com/dagforge/dagforge/internal/manifest"
	"github.com/dagforge/dagforge/internal/template"
)

// Assembler generates artifacts for the tasks of one workflow
// document. It is safe for concurrent use once constructed.
type Assembler struct {
	doc      *config.Document
	opts     Options
	logger   *log.Logger
	events   Sink
	runID    string
	user     string
	defaults keyword.Scope

	seqMu   sync.Mutex
	seqFile *ident.SeqFile
}

// New builds an Assembler over a loaded document. The run id defaults
// to one derived from the invoking user and the current time.
func New(doc *config.Document, opts Options) (*Assembler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	user, err := ident.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	runID := opts.RunID
	if runID == "" {
		runID = ident.NewRunID(user, time.Now())
	}

	defaults := keyword.Scope{"USER_NAME": user}
	if host, err := os.Hostname(); err == nil {
		defaults["HOST_NAME"] = host
	}
	if home, err := os.UserHomeDir(); err == nil {
		defaults["USER_HOME"] = home
	}

	return &Assembler{
		doc:      doc,
		opts:     opts,
		logger:   logger,
		events:   opts.Events,
		runID:    runID,
		user:     user,
		defaults: defaults,
	}, nil
}

// RunID returns the identifier stamped into this run's artifacts.
func (a *Assembler) RunID() string {
	return a.runID
}

func (a *Assembler) drawNodeSet() (string, error) {
	a.seqMu.Lock()
	defer a.seqMu.Unlock()

	if a.seqFile == nil {
		path := a.opts.SeqPath
		if path == "" {
			p, err := ident.DefaultSeqPath()
			if err != nil {
				return "", err
			}
			path = p
		}
		a.seqFile = ident.NewSeqFile(path)
	}
	n, err := a.seqFile.Next()
	if err != nil {
		return "", fmt.Errorf("draw node set: %w", err)
	}
	return ident.NodeSetName(a.user, n), nil
}

// executePlan renders and commits one planned task, reporting the
// outcome rather than returning an error so parallel runs can collect
// per-task results.
func (a *Assembler) executePlan(ctx context.Context, plan *TaskPlan) *TaskResult {
	start := time.Now()
	res := &TaskResult{
		Workflow: plan.Workflow,
		Task:     plan.Task,
		Dir:      plan.Dir,
		Workers:  len(plan.Nodes),
		Units:    len(plan.Units),
	}

	err := a.renderAndCommit(ctx, plan)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		a.events.emit(TaskFailed{Task: plan.Task, Err: err})
		a.logger.WithError(err).Error("task generation failed",
			"workflow", plan.Workflow, "task", plan.Task)
		return res
	}

	res.Artifacts = len(plan.Artifacts) + 2
	a.events.emit(TaskCompleted{Task: plan.Task, Dir: plan.Dir, Artifacts: res.Artifacts})
	a.logger.Info("task generated",
		"workflow", plan.Workflow,
		"task", plan.Task,
		"artifacts", res.Artifacts,
		"workers", res.Workers,
		"dir", plan.Dir,
		"duration", res.Duration)
	return res
}

// renderAndCommit is the write half of the pipeline: stage every
// artifact under a hidden directory inside the task output directory,
// then publish the staged files by rename. The stage lives on the same
// filesystem as the final paths, so each publish is atomic.
func (a *Assembler) renderAndCommit(ctx context.Context, plan *TaskPlan) (err error) {
	a.events.emit(TaskStarted{
		Workflow:  plan.Workflow,
		Task:      plan.Task,
		Artifacts: len(plan.Artifacts) + 2,
		Workers:   len(plan.Nodes),
	})

	if err := os.MkdirAll(plan.Dir, 0o755); err != nil {
		return &ArtifactWriteError{Task: plan.Task, Phase: "setup", Artifact: plan.Dir, Err: err}
	}

	generationID := uuid.NewString()
	stage := filepath.Join(plan.Dir, fmt.Sprintf(".stage-%s-%s", plan.Task, generationID[:8]))
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return &ArtifactWriteError{Task: plan.Task, Phase: "setup", Artifact: stage, Err: err}
	}
	defer func() {
		if err != nil {
			os.RemoveAll(stage)
		}
	}()

	for _, art := range plan.Artifacts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("task %s: %w", plan.Task, ctxErr)
		}
		dst := filepath.Join(stage, art.Path)
		if renderErr := template.RenderToFile(art.Template, dst, art.table, art.Mode); renderErr != nil {
			return &ArtifactWriteError{Task: plan.Task, Phase: art.Phase, Artifact: art.Path, Err: renderErr}
		}
		a.events.emit(ArtifactRendered{Task: plan.Task, Phase: art.Phase, Path: art.Path})
		a.logger.Debug("artifact staged", "task", plan.Task, "phase", art.Phase, "path", art.Path)
	}

	d := dag.New(plan.Task,
		dag.Job{Name: dag.PreNodeName, SubmitFile: plan.preSubmit},
		dag.Job{Name: dag.PostNodeName, SubmitFile: plan.postSubmit},
	)
	for i, node := range plan.Nodes {
		d.AddWorker(node, plan.workerSubmits[i])
	}
	if dagErr := d.WriteFile(filepath.Join(stage, plan.DagFile)); dagErr != nil {
		return &ArtifactWriteError{Task: plan.Task, Phase: "dag", Artifact: plan.DagFile, Err: dagErr}
	}
	a.events.emit(ArtifactRendered{Task: plan.Task, Phase: "dag", Path: plan.DagFile})

	if manifestErr := a.writeManifest(plan, stage, generationID); manifestErr != nil {
		return manifestErr
	}

	if commitErr := commitStage(plan, stage); commitErr != nil {
		return commitErr
	}
	os.RemoveAll(stage)
	return nil
}

func (a *Assembler) writeManifest(plan *TaskPlan, stage, generationID string) error {
	m := &manifest.Manifest{
		Schema:       manifest.Schema,
		GenerationID: generationID,
		RunID:        plan.RunID,
		Platform:     plan.Platform,
		Workflow:     plan.Workflow,
		Task:         plan.Task,
		Created:      time.Now().UTC(),
	}
	for _, art := range plan.Artifacts {
		entry, err := manifest.NewArtifact(stage, art.Path, art.Phase, art.Node)
		if err != nil {
			return &ArtifactWriteError{Task: plan.Task, Phase: art.Phase, Artifact: art.Path, Err: err}
		}
		m.Artifacts = append(m.Artifacts, entry)
	}
	dagEntry, err := manifest.NewArtifact(stage, plan.DagFile, "dag", "")
	if err != nil {
		return &ArtifactWriteError{Task: plan.Task, Phase: "dag", Artifact: plan.DagFile, Err: err}
	}
	m.Artifacts = append(m.Artifacts, dagEntry)

	m.Dag.File = plan.DagFile
	for _, node := range plan.Nodes {
		m.Dag.Nodes = append(m.Dag.Nodes, manifest.NodeInfo{Name: node.Name, Units: node.Units})
	}

	if err := m.Write(filepath.Join(stage, manifest.Filename)); err != nil {
		return &ArtifactWriteError{Task: plan.Task, Phase: "manifest", Artifact: manifest.Filename, Err: err}
	}
	return nil
}

// commitStage publishes staged files into the task directory. The
// manifest is last in plan.relPaths, so its presence marks a complete
// set. A failed rename rolls already-published files back into the
// stage, which the caller then removes.
func commitStage(plan *TaskPlan, stage string) error {
	var committed []string
	for _, rel := range plan.relPaths() {
		final := filepath.Join(plan.Dir, rel)
		if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
			rollback(plan.Dir, stage, committed)
			return &ArtifactWriteError{Task: plan.Task, Phase: "commit", Artifact: rel, Err: err}
		}
		if err := os.Rename(filepath.Join(stage, rel), final); err != nil {
			rollback(plan.Dir, stage, committed)
			return &ArtifactWriteError{Task: plan.Task, Phase: "commit", Artifact: rel, Err: err}
		}
		committed = append(committed, rel)
	}
	return nil
}

func rollback(dir, stage string, committed []string) {
	for _, rel := range committed {
		os.Rename(filepath.Join(dir, rel), filepath.Join(stage, rel))
	}
}
