package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/identity"
	"github.com/lotar-dev/lotar/internal/task"
)

var statusCmd = &cobra.Command{
	Use:     "status <id> <new-status>",
	GroupID: "task",
	Short:   "Transition a task's status",
	Args:    cobra.ExactArgs(2),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	newStatus := args[1]
	t, err := app.Service.Update(args[0], identity.CurrentUser(app.RepoRoot), task.Patch{Status: &newStatus})
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", t.ID, t.Status)
	return nil
}
