package assemble

import (
	"github.com/dagforge/dagforge/internal/keyword"
	"github.com/dagforge/dagforge/internal/log"
)

// Options configure an Assembler. The zero value is usable: artifacts
// land under the platform's defaultRoot (or the working directory), the
// run id is derived from the invoking user and clock, and tasks run one
// at a time.
type Options struct {
	// OutputRoot is the base directory task output directories are
	// created under. Empty means the platform's defaultRoot, falling
	// back to the working directory. $VAR references are expanded from
	// the environment.
	OutputRoot string

	// RunID overrides the generated run identifier.
	RunID string

	// Overrides is the command-line keyword scope. It outranks every
	// configuration scope; only generator facts outrank it.
	Overrides keyword.Scope

	// NodeSet overrides the tasks' nodeSet setting. The literal "auto"
	// draws a fresh identifier from the sequence file.
	NodeSet string

	// InputFile overrides the tasks' work-unit manifest. The path is
	// resolved against the working directory, not the config file.
	InputFile string

	// IdsPerJob overrides the batching size for all selected tasks.
	IdsPerJob int

	// Parallel is the number of tasks generated concurrently. Values
	// below 1 mean serial execution.
	Parallel int

	// SeqPath overrides the node-set sequence file location.
	SeqPath string

	Logger *log.Logger
	Events Sink
}

func (o Options) parallel() int {
	if o.Parallel < 1 {
		return 1
	}
	return o.Parallel
}
