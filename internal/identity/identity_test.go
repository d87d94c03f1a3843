package identity

import (
	"os"
	"os/exec"
	"testing"
)

func TestIsReserved(t *testing.T) {
	if !IsReserved("status") {
		t.Error("expected status to be reserved")
	}
	if IsReserved("story_points") {
		t.Error("expected story_points to not be reserved")
	}
}

func TestGeneratePrefixMultiWord(t *testing.T) {
	prefix, err := GeneratePrefix("Service Mesh", nil)
	if err != nil {
		t.Fatalf("GeneratePrefix: %v", err)
	}
	if prefix != "SM" {
		t.Fatalf("got %q, want SM", prefix)
	}
}

func TestGeneratePrefixSingleWord(t *testing.T) {
	prefix, err := GeneratePrefix("Backend", nil)
	if err != nil {
		t.Fatalf("GeneratePrefix: %v", err)
	}
	if prefix != "BACK" {
		t.Fatalf("got %q, want BACK", prefix)
	}
}

func TestGeneratePrefixDisambiguatesByExtension(t *testing.T) {
	existing := map[string]string{"BACK": "Backend"}
	prefix, err := GeneratePrefix("Backoffice", existing)
	if err != nil {
		t.Fatalf("GeneratePrefix: %v", err)
	}
	if prefix == "BACK" {
		t.Fatal("expected a disambiguated prefix distinct from BACK")
	}
}

func TestGeneratePrefixSameOwnerReused(t *testing.T) {
	existing := map[string]string{"BACK": "Backend"}
	prefix, err := GeneratePrefix("Backend", existing)
	if err != nil {
		t.Fatalf("GeneratePrefix: %v", err)
	}
	if prefix != "BACK" {
		t.Fatalf("got %q, want BACK (same project should reuse its own prefix)", prefix)
	}
}

func TestValidateExplicitPrefixCollision(t *testing.T) {
	existing := map[string]string{"SERV": "Service Mesh"}
	err := ValidateExplicitPrefix("SERV", "Other Project", existing)
	if err == nil {
		t.Fatal("expected collision error")
	}
}

func TestValidateExplicitPrefixLengthLimit(t *testing.T) {
	long := "ABCDEFGHIJKLMNOPQRSTU" // 21 chars
	if err := ValidateExplicitPrefix(long, "X", nil); err == nil {
		t.Fatal("expected length error for 21-char prefix")
	}
	ok := long[:20]
	if err := ValidateExplicitPrefix(ok, "X", nil); err != nil {
		t.Fatalf("expected 20-char prefix to be accepted, got %v", err)
	}
}

func TestValidateExplicitPrefixCharset(t *testing.T) {
	if err := ValidateExplicitPrefix("SE RV", "X", nil); err == nil {
		t.Fatal("expected charset error for prefix containing a space")
	}
}

func TestCurrentUserEnvOverride(t *testing.T) {
	t.Setenv("LOTAR_USER", "alice@example.com")
	if got := CurrentUser(t.TempDir()); got != "alice@example.com" {
		t.Fatalf("got %q, want alice@example.com", got)
	}
}

func TestCurrentUserFallsBackToGitEmail(t *testing.T) {
	os.Unsetenv("LOTAR_USER")
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

	if got := CurrentUser(dir); got != "dev@example.com" {
		t.Fatalf("got %q, want dev@example.com", got)
	}
}
