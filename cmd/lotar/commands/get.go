package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/storage"
)

var getCmd = &cobra.Command{
	Use:     "get <id>",
	GroupID: "task",
	Short:   "Show a single task",
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	t, err := app.Service.Get(args[0])
	if err != nil {
		return err
	}

	printTask(t)
	return nil
}

func printTask(t *storage.Task) {
	fmt.Printf("%s: %s\n", t.ID, t.Title)
	fmt.Printf("  Status:   %s\n", t.Status)
	fmt.Printf("  Priority: %s\n", t.Priority)
	fmt.Printf("  Type:     %s\n", t.Type)
	if t.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", t.Assignee)
	}
	if t.Reporter != "" {
		fmt.Printf("  Reporter: %s\n", t.Reporter)
	}
	if t.DueDate != "" {
		fmt.Printf("  Due:      %s\n", t.DueDate)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  Tags:     %v\n", t.Tags)
	}
	if t.Description != "" {
		fmt.Printf("\n%s\n", t.Description)
	}
	if len(t.References) > 0 {
		fmt.Println("\nReferences:")
		for _, r := range t.References {
			fmt.Printf("  %s\n", r.Key())
		}
	}
	fmt.Printf("\nCreated:  %s\n", t.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Modified: %s\n", t.Modified.Format("2006-01-02 15:04:05"))
}
