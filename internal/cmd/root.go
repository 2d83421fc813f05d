package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dagforge/dagforge/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "dagforge",
	Short: "Workflow artifact generator for batch schedulers",
	Long: `dagforge turns a declarative workflow configuration into the concrete
artifacts a batch scheduler consumes: per-phase shell scripts, submit
files, and an HTCondor DAG that wires preJob, worker, and postJob
phases into a star topology.

Generation is all-or-nothing per task: artifacts are staged next to
their final location and committed by rename, with a manifest recording
a checksum for every file so later runs can detect drift.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

var (
	rootVerbose   bool
	rootLogFormat string
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func configureLogging() {
	config := log.DefaultConfig()
	if rootVerbose {
		config.Level = log.LevelDebug
	}
	config.Format = log.ParseFormat(rootLogFormat)
	log.SetDefaultLogger(log.New(config))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootVerbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "text", "log output format (text, json)")
}
