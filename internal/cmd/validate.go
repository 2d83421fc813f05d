package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagforge/dagforge/internal/assemble"
	"github.com/dagforge/dagforge/internal/config"
	"github.com/dagforge/dagforge/internal/ux"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a workflow configuration without writing anything",
	Long: `Load the workflow file, resolve its platforms, and run the full
pre-generation validation over every workflow and task: structural
checks, keyword resolution, unit chunking, cross-phase consistency,
and output path collisions.

Problems are collected rather than reported one at a time, so a single
run shows everything that needs fixing.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateFile         string
	validatePlatform     string
	validatePlatformFile string
	validatePlatformDirs []string
)

func init() {
	f := validateCmd.Flags()
	f.StringVarP(&validateFile, "file", "f", "", "workflow configuration file (default workflows.yaml)")
	f.StringVarP(&validatePlatform, "platform", "p", "", "platform overriding the workflows' platform")
	f.StringVar(&validatePlatformFile, "platform-file", "", "explicit platform configuration file")
	f.StringSliceVar(&validatePlatformDirs, "platform-dir", nil, "extra directory searched for platform files (repeatable)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := loadWorkflowDocument(validateFile, validatePlatform, validatePlatformFile, validatePlatformDirs)
	if err != nil {
		return err
	}

	var errs []error
	if err := config.ValidateDocument(doc); err != nil {
		errs = append(errs, err)
	}

	seqPath, cleanup, err := scratchSeqPath()
	if err != nil {
		return err
	}
	defer cleanup()

	names, err := doc.WorkflowNames()
	if err != nil {
		return ux.FormatError(err, "reading workflows")
	}

	asm, err := assemble.New(doc, assemble.Options{SeqPath: seqPath})
	if err != nil {
		return ux.EnhanceError(err)
	}

	tasks := 0
	for _, name := range names {
		plans, planErr := asm.Plan(name, nil)
		tasks += len(plans)
		if planErr != nil {
			errs = append(errs, fmt.Errorf("workflow %s: %w", name, planErr))
		}
	}

	if len(errs) > 0 {
		return ux.EnhanceError(errors.Join(errs...))
	}

	fmt.Printf("✓ %s: %d workflow(s), %d task(s) valid\n", doc.Origin(), len(names), tasks)
	return nil
}
