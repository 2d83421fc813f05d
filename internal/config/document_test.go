package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowFixture = `
platforms:
  cluster:
    scheduler: condor
    idsPerJob: 25
    fileSystemDomain: cluster.example.org
workflows:
  imaging:
    platform: cluster
    keywords:
      COMMAND: runPipeline.sh
    tasks:
      coadd:
        inputFile: ids.txt
        preJob:
          script: {template: tpl/preJob.sh.template, output: preJob.sh}
          submit: {template: tpl/preJob.sub.template, output: preJob.sub}
        workerJob:
          script: {template: tpl/worker.sh.template, output: $DAG_NODE.sh}
          submit: {template: tpl/worker.sub.template, output: $DAG_NODE.sub}
        postJob:
          script: {template: tpl/postJob.sh.template, output: postJob.sh}
          submit: {template: tpl/postJob.sub.template, output: postJob.sub}
`

func writeWorkflowFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocumentInlinePlatform(t *testing.T) {
	doc, err := LoadDocument(writeWorkflowFile(t, workflowFixture), LoadOptions{})
	require.NoError(t, err)

	names, err := doc.WorkflowNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"imaging"}, names)

	wf, err := doc.Workflow("imaging")
	require.NoError(t, err)

	platform, err := wf.Platform()
	require.NoError(t, err)
	assert.Equal(t, "cluster", platform.Name)

	scheduler, err := platform.Scheduler()
	require.NoError(t, err)
	assert.Equal(t, SchedulerCondor, scheduler)

	domain, ok, err := platform.FileSystemDomain()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cluster.example.org", domain)
}

func TestLoadDocumentGraftsPlatformFromDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigDir, "")
	platformDir := t.TempDir()
	platformYAML := "scheduler: pbs\nidsPerJob: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(platformDir, "remote.yaml"), []byte(platformYAML), 0o644))

	workflowYAML := strings.Replace(workflowFixture, "platform: cluster", "platform: remote", 1)
	workflowYAML = strings.Replace(workflowYAML, "platforms:", "unusedPlatforms:", 1)

	doc, err := LoadDocument(writeWorkflowFile(t, workflowYAML), LoadOptions{PlatformDirs: []string{platformDir}})
	require.NoError(t, err)

	platform, err := doc.Platform("remote")
	require.NoError(t, err)

	scheduler, err := platform.Scheduler()
	require.NoError(t, err)
	assert.Equal(t, SchedulerPBS, scheduler)

	n, ok, err := platform.IdsPerJob()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, n)
}

func TestLoadDocumentPlatformOverride(t *testing.T) {
	extra := `
  spare:
    scheduler: pbs
`
	content := strings.Replace(workflowFixture, "workflows:", extra+"workflows:", 1)

	doc, err := LoadDocument(writeWorkflowFile(t, content), LoadOptions{PlatformName: "spare"})
	require.NoError(t, err)

	wf, err := doc.Workflow("imaging")
	require.NoError(t, err)
	name, err := wf.PlatformName()
	require.NoError(t, err)
	assert.Equal(t, "spare", name)
}

func TestLoadDocumentMissingPlatform(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigDir, "")
	content := strings.Replace(workflowFixture, "platform: cluster", "platform: nonesuch", 1)
	content = strings.Replace(content, "platforms:", "unusedPlatforms:", 1)

	_, err := LoadDocument(writeWorkflowFile(t, content), LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform file not found")
	assert.Contains(t, err.Error(), "nonesuch")
}

func TestFindPlatformFileOrder(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	override := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(EnvConfigDir, override)

	writePlatform := func(dir string) {
		platforms := filepath.Join(dir, "platforms")
		require.NoError(t, os.MkdirAll(platforms, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(platforms, "cluster.yaml"), []byte("scheduler: condor\n"), 0o644))
	}

	// XDG location only.
	writePlatform(filepath.Join(xdg, "dagforge"))
	found, err := FindPlatformFile("cluster", "", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "dagforge", "platforms", "cluster.yaml"), found)

	// Home location outranks XDG.
	writePlatform(filepath.Join(home, ".dagforge"))
	found, err = FindPlatformFile("cluster", "", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dagforge", "platforms", "cluster.yaml"), found)

	// Explicit config dir outranks both.
	writePlatform(override)
	found, err = FindPlatformFile("cluster", "", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(override, "platforms", "cluster.yaml"), found)
}

func TestFindPlatformFileExplicit(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("scheduler: condor\n"), 0o644))

	found, err := FindPlatformFile("ignored", explicit, nil)
	require.NoError(t, err)
	assert.Equal(t, explicit, found)

	_, err = FindPlatformFile("ignored", filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform file not found")
}

func TestTaskViews(t *testing.T) {
	doc, err := LoadDocument(writeWorkflowFile(t, workflowFixture), LoadOptions{})
	require.NoError(t, err)

	wf, err := doc.Workflow("imaging")
	require.NoError(t, err)
	task, err := wf.Task("coadd")
	require.NoError(t, err)

	input, ok, err := task.InputFile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ids.txt", input)

	outputDir, err := task.OutputDir()
	require.NoError(t, err)
	assert.Equal(t, "coadd", outputDir, "output dir defaults to the task name")

	dagFile, err := task.DagFile()
	require.NoError(t, err)
	assert.Equal(t, "coadd.dag", dagFile)

	phases, err := task.Phases()
	require.NoError(t, err)
	require.Len(t, phases, 3)
	assert.Equal(t, PhasePre, phases[0].Kind)
	assert.Equal(t, PhaseWorker, phases[1].Kind)
	assert.Equal(t, PhasePost, phases[2].Kind)

	workerScript, err := phases[1].ScriptOutput()
	require.NoError(t, err)
	assert.Equal(t, "$DAG_NODE.sh", workerScript)

	keywords, err := wf.Keywords()
	require.NoError(t, err)
	assert.Equal(t, "runPipeline.sh", keywords["COMMAND"])
}

func TestValidateDocument(t *testing.T) {
	doc, err := LoadDocument(writeWorkflowFile(t, workflowFixture), LoadOptions{})
	require.NoError(t, err)
	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocumentFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "unknown scheduler",
			mutate:  func(s string) string { return strings.Replace(s, "scheduler: condor", "scheduler: slurm", 1) },
			wantErr: "unknown scheduler",
		},
		{
			name:    "missing phase",
			mutate:  func(s string) string { return strings.Replace(s, "postJob:", "renamedJob:", 1) },
			wantErr: "postJob",
		},
		{
			name: "no unit source",
			mutate: func(s string) string {
				return strings.Replace(s, "inputFile: ids.txt", "nodeSet: fixed_1", 1)
			},
			wantErr: "work-unit source",
		},
		{
			name: "both unit sources",
			mutate: func(s string) string {
				return strings.Replace(s, "inputFile: ids.txt", "inputFile: ids.txt\n        totalUnits: 4", 1)
			},
			wantErr: "only one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadDocument(writeWorkflowFile(t, tt.mutate(workflowFixture)), LoadOptions{})
			require.NoError(t, err)

			err = ValidateDocument(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolvePath(t *testing.T) {
	path := writeWorkflowFile(t, workflowFixture)
	doc, err := LoadDocument(path, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "tpl", "x.template"), doc.ResolvePath("tpl/x.template"))
	assert.Equal(t, "/abs/x.template", doc.ResolvePath("/abs/x.template"))
}
