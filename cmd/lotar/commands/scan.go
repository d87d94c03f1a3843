package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/config"
	"github.com/lotar-dev/lotar/internal/scanner"
)

var (
	scanProject  string
	scanDryRun   bool
	scanReanchor bool
)

var scanCmd = &cobra.Command{
	Use:     "scan",
	GroupID: "workspace",
	Short:   "Scan source for signal-word comments and reconcile them into tasks",
	RunE:    runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanProject, "project", "", "Project prefix newly discovered tasks are created in (defaults to default_project)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Report what would change without writing files or tasks")
	scanCmd.Flags().BoolVar(&scanReanchor, "reanchor", false, "Drop every other code reference when re-anchoring a moved comment")
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	project, err := resolveProject(app.TasksRoot, scanProject)
	if err != nil {
		return err
	}

	resolved, err := config.Resolve(app.TasksRoot, project)
	if err != nil {
		return err
	}

	result, err := scanner.Scan(cmd.Context(), scanner.Options{
		Root:           app.RepoRoot,
		IncludeExt:     resolved.ScanIncludeExt,
		ExcludeExt:     resolved.ScanExcludeExt,
		SignalWords:    resolved.ScanSignalWords,
		TicketPatterns: resolved.ScanTicketPatterns,
		ModifiedOnly:   resolved.ScanModifiedOnly,
	})
	if err != nil {
		return err
	}

	for _, f := range result.Failed {
		fmt.Printf("warning: could not read %s: %v\n", f.Path, f.Err)
	}

	outcomes := scanner.Reconcile(scanner.ApplyOptions{
		Service:  app.Service,
		Project:  project,
		RepoRoot: app.RepoRoot,
		DryRun:   scanDryRun,
		Reanchor: scanReanchor,
	}, result)

	var created, updated, skipped, failed int
	for _, o := range outcomes {
		switch o.Status {
		case "created":
			created++
			fmt.Printf("created %s: %s (%s:%d)\n", o.TaskID, o.Entry.Title, o.Entry.File, o.Entry.Line)
		case "updated":
			updated++
			fmt.Printf("updated %s (%s:%d)\n", o.TaskID, o.Entry.File, o.Entry.Line)
		case "skipped":
			skipped++
		case "failed":
			failed++
			fmt.Printf("failed %s:%d: %s\n", o.Entry.File, o.Entry.Line, o.Note)
		}
	}

	fmt.Printf("\nscanned %d entries: %d created, %d updated, %d skipped, %d failed\n", len(result.Entries), created, updated, skipped, failed)
	return nil
}
