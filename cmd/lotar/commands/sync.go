package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lotar-dev/lotar/internal/config"
	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/sync"
	"github.com/lotar-dev/lotar/internal/sync/github"
	"github.com/lotar-dev/lotar/internal/sync/jira"
)

var (
	syncDryRun  bool
	syncReport  bool
	syncProject string
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "workspace",
	Short:   "Push or pull tasks against a configured remote",
}

var syncPushCmd = &cobra.Command{
	Use:   "push <remote>",
	Short: "Push local tasks to the remote",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncPush,
}

var syncPullCmd = &cobra.Command{
	Use:   "pull <remote>",
	Short: "Pull remote issues into local tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncPull,
}

var syncValidateCmd = &cobra.Command{
	Use:   "validate <remote>",
	Short: "Validate a remote's configuration without syncing",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncValidate,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncValidateCmd)

	syncCmd.PersistentFlags().BoolVar(&syncDryRun, "dry-run", false, "Compute and report without writing anything")
	syncCmd.PersistentFlags().BoolVar(&syncReport, "report", false, "Persist the run's report under sync-reports/")
	syncPullCmd.Flags().StringVar(&syncProject, "project", "", "Project prefix new local tasks are created in (defaults to default_project)")
}

func buildClient(remote sync.RemoteConfig) (sync.Client, error) {
	switch remote.Provider {
	case sync.ProviderJira:
		return jira.NewClient(remote.AuthProfile.BaseURL, remote.AuthProfile.Email, remote.AuthProfile.Token), nil
	case sync.ProviderGitHub:
		owner, repo, ok := strings.Cut(remote.Repo, "/")
		if !ok {
			return nil, lotarerrors.New(lotarerrors.KindValidation, "github remote repo must be owner/repo, got "+remote.Repo)
		}
		return github.NewClient(remote.AuthProfile.Token, owner, repo), nil
	default:
		return nil, lotarerrors.New(lotarerrors.KindValidation, "unknown provider "+string(remote.Provider))
	}
}

func newSyncEngine(app *appContext, remoteName string) (*sync.Engine, sync.RemoteConfig, error) {
	remote, err := sync.ResolveRemote(config.HomeConfigPath(), remoteName)
	if err != nil {
		return nil, sync.RemoteConfig{}, err
	}

	client, err := buildClient(remote)
	if err != nil {
		return nil, sync.RemoteConfig{}, err
	}

	engine := sync.New(client, remote, app.Service, app.Bus)
	engine.DryRun = syncDryRun
	return engine, remote, nil
}

func runSyncPush(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	engine, remote, err := newSyncEngine(app, args[0])
	if err != nil {
		return err
	}

	found, err := app.Service.List(storage.Filter{})
	if err != nil {
		return err
	}
	tasks := make([]*storage.Task, 0, len(found))
	for i := range found {
		tasks = append(tasks, &found[i].Task)
	}

	report, err := engine.Push(cmd.Context(), tasks)
	if err != nil {
		return err
	}

	printReport(report)
	return maybePersistReport(app, remote, report)
}

func runSyncPull(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	engine, remote, err := newSyncEngine(app, args[0])
	if err != nil {
		return err
	}

	project, err := resolveProject(app.TasksRoot, syncProject)
	if err != nil {
		return err
	}

	report, err := engine.Pull(cmd.Context(), project)
	if err != nil {
		return err
	}

	printReport(report)
	return maybePersistReport(app, remote, report)
}

func runSyncValidate(cmd *cobra.Command, args []string) error {
	remote, err := sync.ResolveRemote(config.HomeConfigPath(), args[0])
	if err != nil {
		return err
	}

	if remote.Provider != sync.ProviderJira && remote.Provider != sync.ProviderGitHub {
		return fmt.Errorf("remote %q has unknown provider %q", args[0], remote.Provider)
	}
	if remote.Provider == sync.ProviderJira && remote.Project == "" {
		return errors.New("jira remote requires project")
	}
	if remote.Provider == sync.ProviderGitHub && !strings.Contains(remote.Repo, "/") {
		return errors.New("github remote requires repo in owner/repo form")
	}

	fmt.Printf("%s: provider=%s ok\n", args[0], remote.Provider)
	return nil
}

func printReport(report *sync.Report) {
	fmt.Printf("%s %s: created=%d updated=%d skipped=%d failed=%d\n",
		report.Remote, report.Direction, report.Created, report.Updated, report.Skipped, report.Failed)
	for _, item := range report.Items {
		switch item.Action {
		case "failed":
			fmt.Printf("  FAILED %s %s: %s\n", item.TaskID, item.RemoteRef, item.Message)
		default:
			if item.Message != "" {
				fmt.Printf("  %-8s %s %s: %s\n", item.Action, item.TaskID, item.RemoteRef, item.Message)
			}
		}
	}
}

func maybePersistReport(app *appContext, remote sync.RemoteConfig, report *sync.Report) error {
	if !syncReport {
		return nil
	}
	ts := report.Finished.UTC().Format("20060102T150405Z")
	path, err := report.Persist(app.TasksRoot, ts)
	if err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", path)
	return nil
}
