package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/config"
	"github.com/lotar-dev/lotar/internal/log"
)

var (
	// Global flags.
	tasksDirFlag string
	verbose      bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "lotar",
	Short: "A local-first, file-backed issue tracker",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Long: `lotar tracks issues as YAML files committed alongside your source code.

Tasks live under a tasks root (.tasks by default), one project directory
per prefix, one numbered file per task. A scanner discovers signal-word
comments in source and turns them into tasks; a sync engine reconciles
tasks with Jira or GitHub Issues.

Quick start:
  lotar add "Fix the thing"      Create a task in the default project
  lotar list                     List tasks
  lotar scan                     Find signal-word comments in source
  lotar serve                    Run the HTTP/JSON API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnvFromCwd(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .lotar/.env: %v\n", err)
		}

		opts := log.Options{Verbose: verbose}
		if quiet {
			opts.Level = log.LevelWarn
		}
		log.Configure(opts)

		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tasksDirFlag, "tasks-dir", "", "Explicit tasks root (overrides LOTAR_TASKS_DIR and auto-detection)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "task",
		Title: "Task Commands:",
	}, &cobra.Group{
		ID:    "workspace",
		Title: "Workspace Commands:",
	}, &cobra.Group{
		ID:    "config",
		Title: "Configuration Commands:",
	})
}
