package reference

import (
	"testing"

	"github.com/lotar-dev/lotar/internal/storage"
)

func TestReconcileCodeNoChangeWhenSameValueExists(t *testing.T) {
	refs := []storage.Reference{{Code: "main.go#10"}}
	next, changed := ReconcileCode(refs, "main.go#10", false)
	if changed {
		t.Fatal("expected no change for identical code reference")
	}
	if len(next) != 1 {
		t.Fatalf("expected list unchanged, got %v", next)
	}
}

func TestReconcileCodeReplacesStaleLineForSameFile(t *testing.T) {
	refs := []storage.Reference{{Code: "main.go#10"}, {Code: "other.go#3"}}
	next, changed := ReconcileCode(refs, "main.go#25", false)
	if !changed {
		t.Fatal("expected change")
	}
	if len(next) != 2 {
		t.Fatalf("expected 2 entries (other.go kept, main.go reanchored), got %v", next)
	}
	foundNew, foundOther := false, false
	for _, r := range next {
		if r.Code == "main.go#25" {
			foundNew = true
		}
		if r.Code == "other.go#3" {
			foundOther = true
		}
		if r.Code == "main.go#10" {
			t.Fatal("stale main.go#10 entry should have been dropped")
		}
	}
	if !foundNew || !foundOther {
		t.Fatalf("unexpected result: %v", next)
	}
}

func TestReconcileCodeReanchorDropsAllOthers(t *testing.T) {
	refs := []storage.Reference{{Code: "main.go#10"}, {Code: "other.go#3"}, {Jira: "SERV-5"}}
	next, changed := ReconcileCode(refs, "main.go#25", true)
	if !changed {
		t.Fatal("expected change")
	}
	if len(next) != 1 || next[0].Code != "main.go#25" {
		t.Fatalf("expected reanchor to leave only the new entry, got %v", next)
	}
}
