package ux

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dagforge/dagforge/internal/config"
)

// PathDefaults resolves the conventional locations commands fall back
// to when the user does not pass a path explicitly.
type PathDefaults struct {
	workingDir string
}

// NewPathDefaults creates path defaults rooted at the current directory
func NewPathDefaults() *PathDefaults {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &PathDefaults{workingDir: wd}
}

// WorkflowFile returns the default workflow configuration file. The
// working directory is checked first, then the configuration directory
// named by DAGFORGE_CONFIG_DIR. When neither exists the local name is
// returned so the error the caller reports points somewhere sensible.
func (pd *PathDefaults) WorkflowFile() string {
	local := filepath.Join(pd.workingDir, "workflows.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if dir := os.Getenv(config.EnvConfigDir); dir != "" {
		candidate := filepath.Join(dir, "workflows.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return local
}

// ValidateRequiredFile checks that a required input exists and reports
// how to produce it when it does not.
func ValidateRequiredFile(path string, fileType string, hint string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\n%s", fileType, path, hint)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}
