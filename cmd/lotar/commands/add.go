package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/task"
)

var (
	addProject     string
	addDescription string
	addStatus      string
	addPriority    string
	addType        string
	addAssignee    string
	addReporter    string
	addDueDate     string
	addEffort      string
	addTags        string
	addCategory    string
)

var addCmd = &cobra.Command{
	Use:     "add <title>",
	GroupID: "task",
	Short:   "Create a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addProject, "project", "", "Project prefix (defaults to default_project)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Task description")
	addCmd.Flags().StringVar(&addStatus, "status", "", "Initial status (defaults to default_status)")
	addCmd.Flags().StringVar(&addPriority, "priority", "", "Priority (defaults to default_priority)")
	addCmd.Flags().StringVar(&addType, "type", "", "Issue type")
	addCmd.Flags().StringVar(&addAssignee, "assignee", "", "Assignee")
	addCmd.Flags().StringVar(&addReporter, "reporter", "", "Reporter")
	addCmd.Flags().StringVar(&addDueDate, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addEffort, "effort", "", "Effort estimate")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category")
}

func runAdd(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	project, err := resolveProject(app.TasksRoot, addProject)
	if err != nil {
		return err
	}

	t, err := app.Service.Create(task.CreateInput{
		Project:     project,
		Title:       args[0],
		Description: addDescription,
		Status:      addStatus,
		Priority:    addPriority,
		Type:        addType,
		Assignee:    addAssignee,
		Reporter:    addReporter,
		DueDate:     addDueDate,
		Effort:      addEffort,
		Tags:        splitTags(addTags),
		Category:    addCategory,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created %s: %s\n", t.ID, t.Title)
	return nil
}

func splitTags(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
