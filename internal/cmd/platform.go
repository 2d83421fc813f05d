package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dagforge/dagforge/internal/config"
	"github.com/dagforge/dagforge/internal/tui"
	"github.com/dagforge/dagforge/internal/ux"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Manage platform configuration files",
	Long: `Inspect and create the platform files workflows reference by name.

Use 'dagforge platform list' to see every platform on the search path.
Use 'dagforge platform init' to create one interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List platform files found on the search path",
	Long: `List every platform file on the search path: $DAGFORGE_CONFIG_DIR/platforms,
~/.dagforge/platforms, $XDG_CONFIG_HOME/dagforge/platforms, and any
--platform-dir directories. Earlier entries shadow later ones.`,
	Args: cobra.NoArgs,
	RunE: runPlatformList,
}

var platformInitCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a platform file interactively",
	Long: `Walk through the settings a platform file carries and write the result
to the platform search path (or --output).

Requires an interactive terminal unless every value is supplied by
flags in a future invocation; in scripts, write the YAML directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlatformInit,
}

var (
	platformListDirs   []string
	platformInitOutput string
)

func init() {
	platformListCmd.Flags().StringSliceVar(&platformListDirs, "platform-dir", nil, "extra directory searched for platform files (repeatable)")
	platformInitCmd.Flags().StringVar(&platformInitOutput, "output", "", "write the platform file to this path instead of the search path")

	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformInitCmd)
	rootCmd.AddCommand(platformCmd)
}

func runPlatformList(cmd *cobra.Command, args []string) error {
	dirs := config.PlatformSearchDirs(platformListDirs)

	type entry struct {
		name      string
		scheduler string
		path      string
	}
	var entries []entry
	seen := make(map[string]bool)

	for _, dir := range dirs {
		items, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, item := range items {
			if item.IsDir() || !strings.HasSuffix(item.Name(), ".yaml") {
				continue
			}
			name := strings.TrimSuffix(item.Name(), ".yaml")
			if seen[name] {
				continue
			}
			seen[name] = true

			path := filepath.Join(dir, item.Name())
			scheduler := "?"
			if def, err := readPlatformDef(path); err == nil && def.Scheduler != "" {
				scheduler = def.Scheduler
			}
			entries = append(entries, entry{name: name, scheduler: scheduler, path: path})
		}
	}

	if len(entries) == 0 {
		fmt.Println("No platform files found.")
		fmt.Println("\nSearched:")
		for _, dir := range dirs {
			fmt.Printf("  %s\n", dir)
		}
		fmt.Println("\nRun 'dagforge platform init' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEDULER\tFILE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.name, e.scheduler, e.path)
	}
	return w.Flush()
}

func readPlatformDef(path string) (*config.PlatformDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def config.PlatformDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func runPlatformInit(cmd *cobra.Command, args []string) error {
	if !tui.ShouldPrompt() {
		return fmt.Errorf("platform init needs an interactive terminal; write the YAML file directly instead")
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		var err error
		name, err = tui.PromptForString(tui.Prompt{
			Message:     "Platform name",
			Placeholder: "cluster",
			Required:    true,
		})
		if err != nil {
			return err
		}
	}

	scheduler, err := tui.PromptForSelect("Scheduler", []string{"condor", "pbs"})
	if err != nil {
		return err
	}

	def := config.PlatformDef{Scheduler: scheduler}

	if def.DefaultRoot, err = tui.PromptForString(tui.Prompt{
		Message:     "Default output root (blank for working directory)",
		Placeholder: "/scratch/$USER_NAME/runs",
	}); err != nil {
		return err
	}
	if def.LocalScratch, err = tui.PromptForString(tui.Prompt{
		Message:     "Local scratch directory",
		Placeholder: "/tmp/$USER_NAME",
	}); err != nil {
		return err
	}
	if def.DataDirectory, err = tui.PromptForString(tui.Prompt{
		Message: "Data directory",
	}); err != nil {
		return err
	}
	if def.FileSystemDomain, err = tui.PromptForString(tui.Prompt{
		Message:     "File system domain",
		Placeholder: "cluster.example.org",
	}); err != nil {
		return err
	}
	if def.SearchPath, err = tui.PromptForString(tui.Prompt{
		Message: "Software search path",
	}); err != nil {
		return err
	}

	idsPerJob, err := tui.PromptForString(tui.Prompt{
		Message:     "Default work units per job (blank for none)",
		Placeholder: "25",
	})
	if err != nil {
		return err
	}
	if idsPerJob != "" {
		n, err := strconv.Atoi(idsPerJob)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid ids-per-job: %s", idsPerJob)
		}
		def.IdsPerJob = n
	}

	if def.NodeSetRequired, err = tui.PromptForConfirmation("Require a node set for every task?", false); err != nil {
		return err
	}

	path := platformInitOutput
	if path == "" {
		dirs := config.PlatformSearchDirs(nil)
		if len(dirs) == 0 {
			return fmt.Errorf("no platform directory available; pass --output")
		}
		path = filepath.Join(dirs[0], name+".yaml")
	}

	data, err := yaml.Marshal(&def)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ux.FormatError(err, "creating platform directory")
	}
	if _, err := os.Stat(path); err == nil {
		overwrite, err := tui.PromptForConfirmation(fmt.Sprintf("%s exists, overwrite?", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			return fmt.Errorf("aborted, %s left untouched", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ux.FormatError(err, "writing platform file")
	}

	fmt.Printf("✓ Platform %s written to %s\n", name, path)
	return nil
}
