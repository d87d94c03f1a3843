package workspace

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

func withCwd(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestResolveExplicitFlagMustExist(t *testing.T) {
	_, _, err := Resolve(filepath.Join(t.TempDir(), "missing"))
	if !lotarerrors.IsWorkspaceNotFound(err) {
		t.Fatalf("expected WorkspaceNotFound, got %v", err)
	}
}

func TestResolveExplicitFlagReturnsAbsPath(t *testing.T) {
	dir := t.TempDir()
	path, src, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != SourceExplicitFlag {
		t.Fatalf("expected SourceExplicitFlag, got %v", src)
	}
	if path != dir {
		abs, _ := filepath.Abs(dir)
		if path != abs {
			t.Fatalf("expected %s, got %s", abs, path)
		}
	}
}

func TestResolveEnvVar(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOTAR_TASKS_DIR", dir)
	path, src, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != SourceEnvVar {
		t.Fatalf("expected SourceEnvVar, got %v", src)
	}
	if path != dir {
		t.Fatalf("expected %s, got %s", dir, path)
	}
}

func TestResolveAncestorWalkFindsTasksDir(t *testing.T) {
	root := t.TempDir()
	tasksDir := filepath.Join(root, DirName)
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	withCwd(t, nested)

	path, src, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != SourceAncestorWalk {
		t.Fatalf("expected SourceAncestorWalk, got %v", src)
	}
	resolvedTasksDir, _ := filepath.EvalSymlinks(tasksDir)
	resolvedPath, _ := filepath.EvalSymlinks(path)
	if resolvedPath != resolvedTasksDir {
		t.Fatalf("expected %s, got %s", resolvedTasksDir, resolvedPath)
	}
}

func TestResolveFallsBackToGitRepoRoot(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	withCwd(t, dir)

	path, src, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src != SourceGitRepoRoot {
		t.Fatalf("expected SourceGitRepoRoot, got %v", src)
	}
	if filepath.Base(path) != DirName {
		t.Fatalf("expected path ending in %s, got %s", DirName, path)
	}
}

func TestResolveFailsOutsideRepoWithNoTasksDir(t *testing.T) {
	dir := t.TempDir()
	withCwd(t, dir)

	_, _, err := Resolve("")
	if !lotarerrors.IsWorkspaceNotFound(err) {
		t.Fatalf("expected WorkspaceNotFound, got %v", err)
	}
}
