package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagforge/dagforge/internal/dag"
)

func writeArtifact(t *testing.T, dir, rel, content string, mode os.FileMode) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), mode))
	require.NoError(t, os.Chmod(full, mode))
}

// buildFixture writes a small but complete task output directory and
// returns its manifest, already persisted alongside the artifacts.
func buildFixture(t *testing.T) (string, *Manifest) {
	t.Helper()
	dir := t.TempDir()

	writeArtifact(t, dir, "pre.sh", "#!/bin/sh\necho pre\n", 0o755)
	writeArtifact(t, dir, "worker_1.sub", "executable = worker.sh\nqueue\n", 0o644)

	d := dag.New("coadd",
		dag.Job{Name: dag.PreNodeName, SubmitFile: "pre.sub"},
		dag.Job{Name: dag.PostNodeName, SubmitFile: "post.sub"},
	)
	d.AddWorker(dag.Node{Name: "worker_1", Units: []string{"a", "b"}}, "worker_1.sub")
	require.NoError(t, d.WriteFile(filepath.Join(dir, "coadd.dag")))

	m := &Manifest{
		Schema:       Schema,
		GenerationID: "b2c7e1f0",
		RunID:        "alice_2026_0823_120000",
		Platform:     "cluster",
		Workflow:     "nightly",
		Task:         "coadd",
		Created:      time.Now().UTC().Truncate(time.Second),
	}
	for _, spec := range []struct{ rel, phase, node string }{
		{"pre.sh", "preJob", ""},
		{"worker_1.sub", "workerJob", "worker_1"},
		{"coadd.dag", "dag", ""},
	} {
		a, err := NewArtifact(dir, spec.rel, spec.phase, spec.node)
		require.NoError(t, err)
		m.Artifacts = append(m.Artifacts, a)
	}
	m.Dag = DagInfo{
		File:  "coadd.dag",
		Nodes: []NodeInfo{{Name: "worker_1", Units: []string{"a", "b"}}},
	}
	require.NoError(t, m.Write(filepath.Join(dir, Filename)))
	return dir, m
}

func TestManifestRoundTrip(t *testing.T) {
	dir, written := buildFixture(t)

	loaded, err := Load(filepath.Join(dir, Filename))
	require.NoError(t, err)

	assert.Equal(t, Schema, loaded.Schema)
	assert.Equal(t, written.RunID, loaded.RunID)
	assert.Equal(t, written.Task, loaded.Task)
	assert.Equal(t, written.Artifacts, loaded.Artifacts)
	assert.Equal(t, written.Dag, loaded.Dag)
	assert.True(t, written.Created.Equal(loaded.Created))
}

func TestNewArtifactRecordsModeAndSize(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "run.sh", "#!/bin/sh\n", 0o755)

	a, err := NewArtifact(dir, "run.sh", "preJob", "")
	require.NoError(t, err)

	assert.Equal(t, "0755", a.Mode)
	assert.Equal(t, int64(10), a.Size)
	assert.Len(t, a.Digest, 64)
}

func TestLoadRejectsUnknownSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte("schema: something/else\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema")
}

func TestVerifyCleanDirectory(t *testing.T) {
	dir, _ := buildFixture(t)

	report, err := Verify(dir)
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Empty(t, report.Drifted())
	assert.NoError(t, report.Err())
}

func TestVerifyDetectsContentChange(t *testing.T) {
	dir, _ := buildFixture(t)

	// Same length so the digest comparison, not the size one, fires.
	writeArtifact(t, dir, "pre.sh", "#!/bin/sh\necho PRE\n", 0o755)

	report, err := Verify(dir)
	require.NoError(t, err)
	require.False(t, report.Clean())

	drifted := report.Drifted()
	require.Len(t, drifted, 1)
	assert.Equal(t, "pre.sh", drifted[0].Path)
	assert.Equal(t, StatusChanged, drifted[0].Status)
	assert.Equal(t, "checksum mismatch", drifted[0].Detail)

	err = report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drift detected")
}

func TestVerifyDetectsMissingArtifact(t *testing.T) {
	dir, _ := buildFixture(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "worker_1.sub")))

	report, err := Verify(dir)
	require.NoError(t, err)

	drifted := report.Drifted()
	require.Len(t, drifted, 1)
	assert.Equal(t, "worker_1.sub", drifted[0].Path)
	assert.Equal(t, StatusMissing, drifted[0].Status)
}

func TestVerifyDetectsModeChange(t *testing.T) {
	dir, _ := buildFixture(t)
	require.NoError(t, os.Chmod(filepath.Join(dir, "pre.sh"), 0o644))

	report, err := Verify(dir)
	require.NoError(t, err)

	drifted := report.Drifted()
	require.Len(t, drifted, 1)
	assert.Equal(t, StatusChanged, drifted[0].Status)
	assert.Contains(t, drifted[0].Detail, "mode 0644")
}

func TestVerifyCrossChecksDagVars(t *testing.T) {
	dir, m := buildFixture(t)

	// Rewrite the manifest to claim a different unit membership while
	// every artifact on disk still matches its digest.
	m.Dag.Nodes[0].Units = []string{"a", "b", "c"}
	require.NoError(t, m.Write(filepath.Join(dir, Filename)))

	report, err := Verify(dir)
	require.NoError(t, err)
	require.False(t, report.Clean())

	drifted := report.Drifted()
	require.Len(t, drifted, 1)
	assert.Equal(t, "coadd.dag", drifted[0].Path)
	assert.Contains(t, drifted[0].Detail, "worker_1")
}

func TestVerifyMissingManifest(t *testing.T) {
	_, err := Verify(t.TempDir())
	require.Error(t, err)
}
