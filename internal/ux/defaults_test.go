package ux

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagforge/dagforge/internal/config"
)

func TestWorkflowFilePrefersWorkingDir(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "workflows.yaml")
	if err := os.WriteFile(local, []byte("workflows: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pd := &PathDefaults{workingDir: dir}
	if got := pd.WorkflowFile(); got != local {
		t.Errorf("expected %s, got %s", local, got)
	}
}

func TestWorkflowFileFallsBackToConfigDir(t *testing.T) {
	configDir := t.TempDir()
	candidate := filepath.Join(configDir, "workflows.yaml")
	if err := os.WriteFile(candidate, []byte("workflows: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvConfigDir, configDir)

	pd := &PathDefaults{workingDir: t.TempDir()}
	if got := pd.WorkflowFile(); got != candidate {
		t.Errorf("expected %s, got %s", candidate, got)
	}
}

func TestWorkflowFileDefaultsToLocalName(t *testing.T) {
	t.Setenv(config.EnvConfigDir, "")

	dir := t.TempDir()
	pd := &PathDefaults{workingDir: dir}
	want := filepath.Join(dir, "workflows.yaml")
	if got := pd.WorkflowFile(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestValidateRequiredFile(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "here.yaml")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateRequiredFile(present, "Workflow file", "hint"); err != nil {
		t.Errorf("expected nil for existing file, got: %v", err)
	}

	err := ValidateRequiredFile(filepath.Join(dir, "gone.yaml"), "Workflow file", "create one with your editor")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "Workflow file not found") {
		t.Errorf("expected labeled message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "create one with your editor") {
		t.Errorf("expected hint in message, got: %v", err)
	}
}
