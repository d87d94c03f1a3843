package sync

import (
	"os"
	"path/filepath"
	"testing"
)

func writeHomeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRemotesMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yml")

	remotes, err := LoadRemotes(path)
	if err != nil {
		t.Fatalf("LoadRemotes: %v", err)
	}
	if len(remotes) != 0 {
		t.Fatalf("len(remotes) = %d, want 0", len(remotes))
	}
}

func TestLoadRemotesParsesSection(t *testing.T) {
	path := writeHomeConfig(t, `
remotes:
  work-jira:
    provider: jira
    project: LOTAR
    auth_profile:
      base_url: https://example.atlassian.net
      email: me@example.com
      token: JIRA_API_TOKEN
  oss-github:
    provider: github
    repo: lotar-dev/lotar
    auth_profile:
      token: GITHUB_TOKEN
`)

	remotes, err := LoadRemotes(path)
	if err != nil {
		t.Fatalf("LoadRemotes: %v", err)
	}
	if len(remotes) != 2 {
		t.Fatalf("len(remotes) = %d, want 2", len(remotes))
	}

	jiraRemote, ok := remotes["work-jira"]
	if !ok {
		t.Fatal("missing work-jira remote")
	}
	if jiraRemote.Name != "work-jira" {
		t.Fatalf("Name = %q, want work-jira", jiraRemote.Name)
	}
	if jiraRemote.Provider != ProviderJira || jiraRemote.Project != "LOTAR" {
		t.Fatalf("unexpected jira remote: %+v", jiraRemote)
	}

	ghRemote, ok := remotes["oss-github"]
	if !ok {
		t.Fatal("missing oss-github remote")
	}
	if ghRemote.Provider != ProviderGitHub || ghRemote.Repo != "lotar-dev/lotar" {
		t.Fatalf("unexpected github remote: %+v", ghRemote)
	}
}

func TestResolveRemoteUnknownName(t *testing.T) {
	path := writeHomeConfig(t, "remotes:\n  known:\n    provider: github\n    repo: a/b\n")

	if _, err := ResolveRemote(path, "missing"); err == nil {
		t.Fatal("expected error for unknown remote")
	}
}

func TestResolveRemoteResolvesEnvSecret(t *testing.T) {
	path := writeHomeConfig(t, `
remotes:
  gh:
    provider: github
    repo: lotar-dev/lotar
    auth_profile:
      token: LOTAR_TEST_GH_TOKEN
`)
	t.Setenv("LOTAR_TEST_GH_TOKEN", "secret-value")

	remote, err := ResolveRemote(path, "gh")
	if err != nil {
		t.Fatalf("ResolveRemote: %v", err)
	}
	if remote.AuthProfile.Token != "secret-value" {
		t.Fatalf("Token = %q, want resolved env value", remote.AuthProfile.Token)
	}
}

func TestResolveRemoteLiteralSecretUnchanged(t *testing.T) {
	path := writeHomeConfig(t, `
remotes:
  gh:
    provider: github
    repo: lotar-dev/lotar
    auth_profile:
      token: ghp_literaltoken
`)

	remote, err := ResolveRemote(path, "gh")
	if err != nil {
		t.Fatalf("ResolveRemote: %v", err)
	}
	if remote.AuthProfile.Token != "ghp_literaltoken" {
		t.Fatalf("Token = %q, want literal unchanged", remote.AuthProfile.Token)
	}
}
