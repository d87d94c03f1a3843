package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/storage"
)

var (
	listProject  string
	listStatus   string
	listPriority string
	listType     string
	listTags     string
	listQuery    string
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "task",
	Short:   "List tasks",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listProject, "project", "", "Restrict to one project prefix")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Comma-separated status filter")
	listCmd.Flags().StringVar(&listPriority, "priority", "", "Comma-separated priority filter")
	listCmd.Flags().StringVar(&listType, "type", "", "Comma-separated type filter")
	listCmd.Flags().StringVar(&listTags, "tags", "", "Comma-separated required tags")
	listCmd.Flags().StringVar(&listQuery, "q", "", "Case-insensitive text match across title/description/tags")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	found, err := app.Service.List(storage.Filter{
		Project:  listProject,
		Status:   splitTags(listStatus),
		Priority: splitTags(listPriority),
		Type:     splitTags(listType),
		Tags:     splitTags(listTags),
		Text:     listQuery,
	})
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTYPE\tTITLE")
	for _, f := range found {
		title := f.Task.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Task.Status, f.Task.Priority, f.Task.Type, title)
	}
	return w.Flush()
}
