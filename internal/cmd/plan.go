package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dagforge/dagforge/internal/assemble"
	"github.com/dagforge/dagforge/internal/ux"
)

var planCmd = &cobra.Command{
	Use:   "plan [workflow]",
	Short: "Show what a generation run would produce",
	Long: `Resolve the selected tasks completely, without writing anything, and
print the resulting layout: worker count, unit count, and output
directory per task.

Planning runs the same validation as generation, so a clean plan means
generate will not fail on configuration. Tasks using 'nodeSet: auto'
are previewed with a scratch sequence; the real sequence file is not
consumed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

var (
	planFile         string
	planTasks        []string
	planPlatform     string
	planPlatformFile string
	planPlatformDirs []string
	planOutputRoot   string
	planIdsPerJob    int
	planNodeSet      string
	planIDFile       string
	planFormat       string
)

func init() {
	f := planCmd.Flags()
	f.StringVarP(&planFile, "file", "f", "", "workflow configuration file (default workflows.yaml)")
	f.StringSliceVarP(&planTasks, "task", "t", nil, "task to plan (repeatable, default all)")
	f.StringVarP(&planPlatform, "platform", "p", "", "platform overriding the workflow's platform")
	f.StringVar(&planPlatformFile, "platform-file", "", "explicit platform configuration file")
	f.StringSliceVar(&planPlatformDirs, "platform-dir", nil, "extra directory searched for platform files (repeatable)")
	f.StringVar(&planOutputRoot, "output-root", "", "base directory for task output directories")
	f.IntVarP(&planIdsPerJob, "ids-per-job", "n", 0, "work units per worker job")
	f.StringVarP(&planNodeSet, "node-set", "N", "", "node set name, or 'auto' to preview a drawn one")
	f.StringVarP(&planIDFile, "id-file", "i", "", "work-unit list overriding the tasks' inputFile")
	f.StringVar(&planFormat, "format", "text", "output format (text, json, yaml)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	doc, err := loadWorkflowDocument(planFile, planPlatform, planPlatformFile, planPlatformDirs)
	if err != nil {
		return err
	}
	workflow, err := resolveWorkflowName(doc, args)
	if err != nil {
		return err
	}

	seqPath, cleanup, err := scratchSeqPath()
	if err != nil {
		return err
	}
	defer cleanup()

	asm, err := assemble.New(doc, assemble.Options{
		OutputRoot: planOutputRoot,
		IdsPerJob:  planIdsPerJob,
		NodeSet:    planNodeSet,
		InputFile:  planIDFile,
		SeqPath:    seqPath,
	})
	if err != nil {
		return ux.EnhanceError(err)
	}

	plans, planErr := asm.Plan(workflow, planTasks)

	if len(plans) > 0 {
		formatter, err := ux.NewFormatter(planFormat, nil)
		if err != nil {
			return err
		}
		if err := formatter.Format(ux.NewPlanView(workflow, asm.RunID(), plans)); err != nil {
			return err
		}
	}

	if planErr != nil {
		return ux.EnhanceError(planErr)
	}
	return nil
}
