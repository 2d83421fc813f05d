package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dagforge/dagforge/internal/dag"
)

// Status classifies one verified artifact.
type Status string

const (
	StatusOK      Status = "ok"
	StatusChanged Status = "changed"
	StatusMissing Status = "missing"
)

// Check is the verification result for one artifact.
type Check struct {
	Path   string
	Status Status
	Detail string
}

// Report holds the verification results for a task output directory.
type Report struct {
	Dir      string
	Manifest *Manifest
	Checks   []Check
}

// Clean reports whether every check passed.
func (r *Report) Clean() bool {
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return true
}

// Drifted returns the checks that did not pass.
func (r *Report) Drifted() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			out = append(out, c)
		}
	}
	return out
}

// Err returns a DriftError when the report is not clean, nil otherwise.
func (r *Report) Err() error {
	n := len(r.Drifted())
	if n == 0 {
		return nil
	}
	return &DriftError{Dir: r.Dir, Count: n}
}

// DriftError reports artifacts that no longer match their manifest.
type DriftError struct {
	Dir   string
	Count int
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("drift detected: %d artifact(s) in %s differ from manifest", e.Count, e.Dir)
}

// Verify loads dir's manifest and compares every recorded artifact
// against the file on disk. The DAG file's VARS lines are additionally
// cross-checked against the recorded node membership.
func Verify(dir string) (*Report, error) {
	m, err := Load(filepath.Join(dir, Filename))
	if err != nil {
		return nil, err
	}

	report := &Report{Dir: dir, Manifest: m}
	for _, a := range m.Artifacts {
		report.Checks = append(report.Checks, checkArtifact(dir, a))
	}
	report.Checks = append(report.Checks, checkDagVars(dir, m.Dag)...)
	return report, nil
}

func checkArtifact(dir string, a Artifact) Check {
	full := filepath.Join(dir, a.Path)
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return Check{Path: a.Path, Status: StatusMissing, Detail: "file not found"}
	}
	if err != nil {
		return Check{Path: a.Path, Status: StatusMissing, Detail: err.Error()}
	}

	if mode := fmt.Sprintf("%04o", info.Mode().Perm()); mode != a.Mode {
		return Check{
			Path:   a.Path,
			Status: StatusChanged,
			Detail: fmt.Sprintf("mode %s, manifest records %s", mode, a.Mode),
		}
	}

	digest, size, err := HashFile(full)
	if err != nil {
		return Check{Path: a.Path, Status: StatusMissing, Detail: err.Error()}
	}
	if size != a.Size {
		return Check{
			Path:   a.Path,
			Status: StatusChanged,
			Detail: fmt.Sprintf("size %d, manifest records %d", size, a.Size),
		}
	}
	if digest != a.Digest {
		return Check{Path: a.Path, Status: StatusChanged, Detail: "checksum mismatch"}
	}
	return Check{Path: a.Path, Status: StatusOK}
}

// checkDagVars re-reads node membership from the DAG file's VARS lines
// and compares it with the manifest's record. A missing DAG file is
// already reported by its artifact check, so it is skipped here.
func checkDagVars(dir string, d DagInfo) []Check {
	if d.File == "" {
		return nil
	}
	full := filepath.Join(dir, d.File)
	if _, err := os.Stat(full); err != nil {
		return nil
	}

	var checks []Check
	for _, n := range d.Nodes {
		units, err := dag.ExtractNodeVarsFile(full, n.Name)
		if err != nil {
			checks = append(checks, Check{
				Path:   d.File,
				Status: StatusChanged,
				Detail: fmt.Sprintf("node %s: %v", n.Name, err),
			})
			continue
		}
		if !slices.Equal(units, n.Units) {
			checks = append(checks, Check{
				Path:   d.File,
				Status: StatusChanged,
				Detail: fmt.Sprintf("node %s unit list differs from manifest", n.Name),
			})
		}
	}
	return checks
}
