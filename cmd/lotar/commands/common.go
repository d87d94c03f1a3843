package commands

import (
	"github.com/lotar-dev/lotar/internal/config"
	"github.com/lotar-dev/lotar/internal/events"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
	"github.com/lotar-dev/lotar/internal/vcs"
	"github.com/lotar-dev/lotar/internal/workspace"
)

// appContext bundles the resolved tasks root and the services built on
// top of it, the common setup sequence every command needs before it
// can touch a task.
type appContext struct {
	TasksRoot string
	RepoRoot  string
	Bus       *events.Bus
	Engine    *storage.Engine
	Service   *task.Service
}

// newAppContext resolves the tasks root via internal/workspace and
// wires the storage/task services on top of it.
func newAppContext() (*appContext, error) {
	root, _, err := workspace.Resolve(tasksDirFlag)
	if err != nil {
		return nil, err
	}

	repoRoot := root
	if g, err := vcs.New(root); err == nil {
		repoRoot = g.Root()
	}

	bus := events.NewBus()
	engine := storage.New(root, bus)
	svc := task.New(engine, root, repoRoot, bus)

	return &appContext{
		TasksRoot: root,
		RepoRoot:  repoRoot,
		Bus:       bus,
		Engine:    engine,
		Service:   svc,
	}, nil
}

// resolveProject returns the explicit project if set, otherwise the
// resolved config's default_project.
func resolveProject(tasksRoot, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	resolved, err := config.Resolve(tasksRoot, "")
	if err != nil {
		return "", err
	}
	return resolved.DefaultProject, nil
}
