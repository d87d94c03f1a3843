package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/identity"
	"github.com/lotar-dev/lotar/internal/task"
)

var (
	editTitle       string
	editDescription string
	editStatus      string
	editPriority    string
	editType        string
	editAssignee    string
	editDueDate     string
	editEffort      string
	editTags        string
	editCategory    string
)

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	GroupID: "task",
	Short:   "Edit a task's fields",
	Args:    cobra.ExactArgs(1),
	RunE:    runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDescription, "description", "", "New description")
	editCmd.Flags().StringVar(&editStatus, "status", "", "New status")
	editCmd.Flags().StringVar(&editPriority, "priority", "", "New priority")
	editCmd.Flags().StringVar(&editType, "type", "", "New type")
	editCmd.Flags().StringVar(&editAssignee, "assignee", "", "New assignee")
	editCmd.Flags().StringVar(&editDueDate, "due", "", "New due date")
	editCmd.Flags().StringVar(&editEffort, "effort", "", "New effort estimate")
	editCmd.Flags().StringVar(&editTags, "tags", "", "Comma-separated tags, replaces the full set")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category")
}

func runEdit(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	patch := task.Patch{}
	if cmd.Flags().Changed("title") {
		patch.Title = &editTitle
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &editDescription
	}
	if cmd.Flags().Changed("status") {
		patch.Status = &editStatus
	}
	if cmd.Flags().Changed("priority") {
		patch.Priority = &editPriority
	}
	if cmd.Flags().Changed("type") {
		patch.Type = &editType
	}
	if cmd.Flags().Changed("assignee") {
		patch.Assignee = &editAssignee
	}
	if cmd.Flags().Changed("due") {
		patch.DueDate = &editDueDate
	}
	if cmd.Flags().Changed("effort") {
		patch.Effort = &editEffort
	}
	if cmd.Flags().Changed("category") {
		patch.Category = &editCategory
	}
	if cmd.Flags().Changed("tags") {
		patch.Tags = splitTags(editTags)
	}

	t, err := app.Service.Update(args[0], identity.CurrentUser(app.RepoRoot), patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s\n", t.ID)
	return nil
}
