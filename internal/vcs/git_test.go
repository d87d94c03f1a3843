package vcs

import (
	"os/exec"
	"testing"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "dev@example.com")
	run("config", "user.name", "Dev Example")
	return dir
}

func TestNewAndRoot(t *testing.T) {
	dir := initRepo(t)
	g, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Root() == "" {
		t.Fatal("expected non-empty root")
	}
}

func TestIsRepo(t *testing.T) {
	dir := initRepo(t)
	if !IsRepo(dir) {
		t.Error("expected IsRepo true inside repo")
	}
	if IsRepo(t.TempDir()) {
		t.Error("expected IsRepo false outside repo")
	}
}

func TestGetConfig(t *testing.T) {
	dir := initRepo(t)
	g, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	email, err := g.GetConfig("user.email")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if email != "dev@example.com" {
		t.Errorf("email = %q, want dev@example.com", email)
	}
}

func TestStatusEmpty(t *testing.T) {
	dir := initRepo(t)
	g, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	files, err := g.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no changes, got %d", len(files))
	}
}
