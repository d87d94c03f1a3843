package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/storage"
)

var statsProject string

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "workspace",
	Short:   "Show task counts by status, priority, and type",
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsProject, "project", "", "Restrict to one project prefix")
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	found, err := app.Service.List(storage.Filter{Project: statsProject})
	if err != nil {
		return err
	}

	byStatus := map[string]int{}
	byPriority := map[string]int{}
	byType := map[string]int{}
	for _, f := range found {
		byStatus[f.Task.Status]++
		byPriority[f.Task.Priority]++
		byType[f.Task.Type]++
	}

	fmt.Printf("Total: %d\n\n", len(found))
	printCounts("By status", byStatus)
	printCounts("By priority", byPriority)
	printCounts("By type", byType)
	return nil
}

func printCounts(label string, counts map[string]int) {
	fmt.Println(label + ":")
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-16s %d\n", k, counts[k])
	}
	fmt.Println()
}
