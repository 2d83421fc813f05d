package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dagforge/dagforge/internal/assemble"
	"github.com/dagforge/dagforge/internal/keyword"
	"github.com/dagforge/dagforge/internal/log"
	"github.com/dagforge/dagforge/internal/tui"
	"github.com/dagforge/dagforge/internal/ux"
)

var generateCmd = &cobra.Command{
	Use:   "generate [workflow]",
	Short: "Generate scheduler artifacts for a workflow",
	Long: `Generate the shell scripts, submit files, DAG description, and manifest
for the selected tasks of a workflow.

Every task is fully validated before anything is rendered, and each
task commits atomically: either the complete artifact set appears in
the task's output directory or nothing does. A failing task never
stops its siblings.

The workflow argument may be omitted when the file defines exactly one
workflow. Without -t the whole workflow is generated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var (
	generateFile         string
	generateTasks        []string
	generatePlatform     string
	generatePlatformFile string
	generatePlatformDirs []string
	generateOutputRoot   string
	generateRunID        string
	generateParallel     int
	generateTUI          bool
	generateCommand      string
	generateIDFile       string
	generateNodeSet      string
	generateIdsPerJob    int
	generateDataDir      string
	generateFSDomain     string
	generateSearchPath   string
	generateKeywords     []string
	generateSeqFile      string
	generateFormat       string
)

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFile, "file", "f", "", "workflow configuration file (default workflows.yaml)")
	f.StringSliceVarP(&generateTasks, "task", "t", nil, "task to generate (repeatable, default all)")
	f.StringVarP(&generatePlatform, "platform", "p", "", "platform overriding the workflow's platform")
	f.StringVar(&generatePlatformFile, "platform-file", "", "explicit platform configuration file")
	f.StringSliceVar(&generatePlatformDirs, "platform-dir", nil, "extra directory searched for platform files (repeatable)")
	f.StringVar(&generateOutputRoot, "output-root", "", "base directory for task output directories")
	f.StringVar(&generateRunID, "run-id", "", "run identifier (default <user>_<date>_<time>)")
	f.IntVar(&generateParallel, "parallel", 1, "number of tasks generated concurrently")
	f.BoolVar(&generateTUI, "tui", false, "show live progress in an interactive terminal UI")
	f.StringVarP(&generateCommand, "command", "c", "", "value for the COMMAND keyword")
	f.StringVarP(&generateIDFile, "id-file", "i", "", "work-unit list overriding the tasks' inputFile")
	f.StringVarP(&generateNodeSet, "node-set", "N", "", "node set name, or 'auto' to draw from the sequence file")
	f.IntVarP(&generateIdsPerJob, "ids-per-job", "n", 0, "work units per worker job")
	f.StringVarP(&generateDataDir, "data-directory", "d", "", "value for the DATA_DIRECTORY keyword")
	f.StringVarP(&generateFSDomain, "fs-domain", "F", "", "value for the FILE_SYSTEM_DOMAIN keyword")
	f.StringVarP(&generateSearchPath, "search-path", "e", "", "value for the SEARCH_PATH keyword")
	f.StringSliceVarP(&generateKeywords, "keyword", "k", nil, "keyword override NAME=VALUE (repeatable)")
	f.StringVar(&generateSeqFile, "seq-file", "", "node-set sequence file (default ~/.dagforge/node-set.seq)")
	f.StringVar(&generateFormat, "format", "text", "summary output format (text, json, yaml)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	doc, err := loadWorkflowDocument(generateFile, generatePlatform, generatePlatformFile, generatePlatformDirs)
	if err != nil {
		return err
	}
	workflow, err := resolveWorkflowName(doc, args)
	if err != nil {
		return err
	}

	overrides, err := collectOverrides()
	if err != nil {
		return err
	}

	// The sink indirection lets the TUI adapter attach after the run
	// id is known.
	var sink assemble.Sink
	opts := assemble.Options{
		OutputRoot: generateOutputRoot,
		RunID:      generateRunID,
		Overrides:  overrides,
		NodeSet:    generateNodeSet,
		InputFile:  generateIDFile,
		IdsPerJob:  generateIdsPerJob,
		Parallel:   generateParallel,
		SeqPath:    generateSeqFile,
		Logger:     log.DefaultLogger(),
		Events: func(ev assemble.Event) {
			if sink != nil {
				sink(ev)
			}
		},
	}

	asm, err := assemble.New(doc, opts)
	if err != nil {
		return ux.EnhanceError(err)
	}

	var adapter *tui.Adapter
	useTUI := generateTUI && tui.IsInteractive()
	if useTUI {
		taskNames := generateTasks
		if len(taskNames) == 0 {
			wf, err := doc.Workflow(workflow)
			if err != nil {
				return ux.EnhanceError(err)
			}
			if taskNames, err = wf.TaskNames(); err != nil {
				return ux.EnhanceError(err)
			}
		}
		adapter = tui.NewAdapter(workflow, asm.RunID(), taskNames)
		if err := adapter.Start(); err != nil {
			return err
		}
		sink = adapter.Sink()
	}

	start := time.Now()
	report, runErr := asm.Generate(cmd.Context(), workflow, generateTasks)

	if useTUI {
		if runErr != nil {
			adapter.Stop()
		} else {
			adapter.NotifyComplete(len(report.Failed()), time.Since(start))
		}
		if err := adapter.Wait(); err != nil {
			log.DefaultLogger().WithError(err).Warn("progress display exited")
		}
	}

	if runErr != nil {
		return ux.EnhanceError(runErr)
	}

	if !useTUI {
		formatter, err := ux.NewFormatter(generateFormat, nil)
		if err != nil {
			return err
		}
		if err := formatter.Format(ux.NewRunView(report)); err != nil {
			return err
		}
	}

	if err := report.Err(); err != nil {
		return ux.EnhanceError(err)
	}
	return nil
}

// collectOverrides folds the override flags into the command-line
// keyword scope.
func collectOverrides() (keyword.Scope, error) {
	overrides := keyword.Scope{}
	for _, pair := range generateKeywords {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid keyword override %q (want NAME=VALUE)", pair)
		}
		overrides[name] = value
	}
	if generateCommand != "" {
		overrides["COMMAND"] = generateCommand
	}
	if generateDataDir != "" {
		overrides["DATA_DIRECTORY"] = generateDataDir
	}
	if generateFSDomain != "" {
		overrides["FILE_SYSTEM_DOMAIN"] = generateFSDomain
	}
	if generateSearchPath != "" {
		overrides["SEARCH_PATH"] = generateSearchPath
	}
	return overrides, nil
}
