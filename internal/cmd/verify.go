package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dagforge/dagforge/internal/manifest"
	"github.com/dagforge/dagforge/internal/ux"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <task-output-dir>...",
	Short: "Check generated artifacts against their manifest",
	Long: `Re-hash every artifact recorded in a task directory's manifest and
compare mode, size, and checksum, plus the DAG's node assignments
against the manifest's record of them.

Exit codes:
  0 - All artifacts match
  4 - Drift detected`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

var verifyFormat string

func init() {
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "text", "output format (text, json, yaml)")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	formatter, err := ux.NewFormatter(verifyFormat, nil)
	if err != nil {
		return err
	}

	var firstDrift error
	for _, dir := range args {
		report, err := manifest.Verify(dir)
		if err != nil {
			return ux.FormatError(err, "verifying "+dir)
		}

		if err := formatter.Format(ux.NewVerifyView(report)); err != nil {
			return err
		}

		if driftErr := report.Err(); driftErr != nil && firstDrift == nil {
			firstDrift = driftErr
		}
	}

	if firstDrift != nil {
		return ux.EnhanceError(firstDrift)
	}
	return nil
}
