package dag

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dagforge/dagforge/internal/template"
)

// Reserved node names for the fan-out/fan-in endpoints.
const (
	PreNodeName  = "pre"
	PostNodeName = "post"
)

// varKey is the VARS variable carrying a worker node's unit list, read
// back by ExtractNodeVars.
const varKey = "var1"

// Job is one schedulable vertex: a node name plus the submit file the
// scheduler runs for it. Submit paths are relative to the DAG file.
type Job struct {
	Name       string
	SubmitFile string
}

// WorkerJob is a worker vertex with its assigned unit identifiers.
type WorkerJob struct {
	Job
	Units []string
}

// Dag describes one task's workload: a pre job fanning out to the
// workers, which fan back into the post job. Worker names are unique
// by construction (Chunk numbers them).
type Dag struct {
	Task    string
	Pre     Job
	Post    Job
	Workers []WorkerJob
}

// New builds an empty DAG for the task with its pre and post jobs.
func New(task string, pre, post Job) *Dag {
	return &Dag{Task: task, Pre: pre, Post: post}
}

// AddWorker appends a worker vertex built from a chunked node.
func (d *Dag) AddWorker(node Node, submitFile string) {
	d.Workers = append(d.Workers, WorkerJob{
		Job:   Job{Name: node.Name, SubmitFile: submitFile},
		Units: node.Units,
	})
}

// Write emits the DAG description: JOB lines for every vertex, a VARS
// line per worker carrying its unit list, and the two PARENT/CHILD
// lines forming the star topology. Output is deterministic for a given
// receiver, so regeneration is byte-stable.
func (d *Dag) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Workload DAG for task %s.\n", d.Task)
	fmt.Fprintf(bw, "JOB %s %s\n", d.Pre.Name, d.Pre.SubmitFile)
	for _, worker := range d.Workers {
		fmt.Fprintf(bw, "JOB %s %s\n", worker.Name, worker.SubmitFile)
		fmt.Fprintf(bw, "VARS %s %s=%q\n", worker.Name, varKey, strings.Join(worker.Units, " "))
	}
	fmt.Fprintf(bw, "JOB %s %s\n", d.Post.Name, d.Post.SubmitFile)

	if len(d.Workers) == 0 {
		fmt.Fprintf(bw, "PARENT %s CHILD %s\n", d.Pre.Name, d.Post.Name)
		return bw.Flush()
	}

	names := make([]string, len(d.Workers))
	for i, worker := range d.Workers {
		names[i] = worker.Name
	}
	fmt.Fprintf(bw, "PARENT %s CHILD %s\n", d.Pre.Name, strings.Join(names, " "))
	fmt.Fprintf(bw, "PARENT %s CHILD %s\n", strings.Join(names, " "), d.Post.Name)

	return bw.Flush()
}

// WriteFile writes the DAG description to path with an atomic publish.
func (d *Dag) WriteFile(path string) error {
	var b strings.Builder
	if err := d.Write(&b); err != nil {
		return err
	}
	return template.WriteFileAtomic(path, []byte(b.String()), template.ModeData)
}
