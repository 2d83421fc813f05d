package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dagforge/dagforge/internal/config"
	"github.com/dagforge/dagforge/internal/ux"
)

// loadWorkflowDocument resolves the workflow file, falling back to the
// conventional locations when no -f flag was given, and loads it with
// platform resolution applied.
func loadWorkflowDocument(file, platformName, platformFile string, platformDirs []string) (*config.Document, error) {
	if file == "" {
		file = ux.NewPathDefaults().WorkflowFile()
	}

	if err := ux.ValidateRequiredFile(file, "Workflow file",
		"Pass -f <file> or create workflows.yaml in the working directory"); err != nil {
		return nil, ux.EnhanceError(err)
	}

	doc, err := config.LoadDocument(file, config.LoadOptions{
		PlatformName: platformName,
		PlatformFile: platformFile,
		PlatformDirs: platformDirs,
	})
	if err != nil {
		return nil, ux.FormatError(err, "loading workflow file")
	}
	return doc, nil
}

// resolveWorkflowName picks the workflow to operate on: the positional
// argument when given, otherwise the file's sole workflow.
func resolveWorkflowName(doc *config.Document, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	names, err := doc.WorkflowNames()
	if err != nil {
		return "", ux.FormatError(err, "reading workflows")
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", fmt.Errorf("workflow name required, the file defines: %s", strings.Join(names, ", "))
}

// scratchSeqPath returns a throwaway sequence file for dry runs so
// previewing an auto node set never consumes numbers from the user's
// real sequence. The cleanup function removes the scratch directory.
func scratchSeqPath() (string, func(), error) {
	dir, err := os.MkdirTemp("", "dagforge-preview-*")
	if err != nil {
		return "", nil, err
	}
	return filepath.Join(dir, "node-set.seq"), func() { os.RemoveAll(dir) }, nil
}
