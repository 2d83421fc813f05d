package assemble

import (
	"fmt"
	"strings"
)

// ArtifactWriteError reports a failure to render or commit one
// artifact. It always names the task, phase, and artifact path so a
// failed run can be traced to a single template or filesystem problem.
type ArtifactWriteError struct {
	Task     string
	Phase    string
	Artifact string
	Err      error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("task %s: %s artifact %s: %v", e.Task, e.Phase, e.Artifact, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// NodeSetMismatchError reports a shared identity keyword that resolves
// to different values in different phases of the same task. Phase is
// the later phase whose value disagrees with preJob's.
type NodeSetMismatchError struct {
	Task      string
	Keyword   string
	Phase     string
	PreValue  string
	PostValue string
}

func (e *NodeSetMismatchError) Error() string {
	return fmt.Sprintf("task %s: node-set mismatch: %s resolves to %q in %s but %q in preJob",
		e.Task, e.Keyword, e.PostValue, e.Phase, e.PreValue)
}

// OutputCollisionError reports two artifacts resolving to the same
// output path, either within one task or across tasks of a run.
type OutputCollisionError struct {
	Path  string
	Tasks []string
}

func (e *OutputCollisionError) Error() string {
	if len(e.Tasks) == 1 {
		return fmt.Sprintf("output path collision: %s claimed twice by task %s", e.Path, e.Tasks[0])
	}
	return fmt.Sprintf("output path collision: %s claimed by tasks %s", e.Path, strings.Join(e.Tasks, ", "))
}

var (
	_ error = (*ArtifactWriteError)(nil)
	_ error = (*NodeSetMismatchError)(nil)
	_ error = (*OutputCollisionError)(nil)
)
