// Package workspace implements the Workspace Resolver of spec.md §4.A:
// locating the tasks root with a documented precedence, pure aside
// from the existence checks each step requires. Grounded on the
// teacher's storage.OpenWorkspace entrypoint and its vcs.findRepoRoot
// ancestor walk, generalized from "find the nearest .git" to "find the
// nearest .tasks, falling back to <repo root>/.tasks".
package workspace

import (
	"os"
	"path/filepath"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/vcs"
)

// Source tags which of the four precedence steps produced a resolved
// tasks root.
type Source string

const (
	SourceExplicitFlag Source = "explicit_flag"
	SourceEnvVar       Source = "env_var"
	SourceAncestorWalk Source = "ancestor_walk"
	SourceGitRepoRoot  Source = "git_repo_root"
)

// DirName is the literal directory name Resolve looks for during the
// ancestor walk and creates under a git repo root.
const DirName = ".tasks"

// Resolve locates the tasks root per spec.md §4.A's four-step
// precedence: explicit path, LOTAR_TASKS_DIR, ancestor walk for a
// .tasks directory, then <git repo root>/.tasks. The git-repo-root
// case may return a path that does not yet exist; storage.Engine
// creates it lazily on first write.
func Resolve(explicit string) (string, Source, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", "", lotarerrors.Wrap(lotarerrors.KindWorkspaceNotFound, "resolve tasks-dir path", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", "", lotarerrors.Wrap(lotarerrors.KindWorkspaceNotFound, "tasks-dir does not exist: "+abs, err)
		}
		return abs, SourceExplicitFlag, nil
	}

	if v := os.Getenv("LOTAR_TASKS_DIR"); v != "" {
		abs, err := filepath.Abs(v)
		if err != nil {
			return "", "", lotarerrors.Wrap(lotarerrors.KindWorkspaceNotFound, "resolve LOTAR_TASKS_DIR path", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", "", lotarerrors.Wrap(lotarerrors.KindWorkspaceNotFound, "LOTAR_TASKS_DIR does not exist: "+abs, err)
		}
		return abs, SourceEnvVar, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", "", lotarerrors.Wrap(lotarerrors.KindWorkspaceNotFound, "get working directory", err)
	}

	if dir, ok := walkAncestors(cwd); ok {
		return dir, SourceAncestorWalk, nil
	}

	if g, err := vcs.New(cwd); err == nil {
		return filepath.Join(g.Root(), DirName), SourceGitRepoRoot, nil
	}

	return "", "", lotarerrors.New(lotarerrors.KindWorkspaceNotFound, "no "+DirName+" directory found and not inside a git repository")
}

// walkAncestors climbs from start looking for a DirName directory,
// stopping at the filesystem root.
func walkAncestors(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
