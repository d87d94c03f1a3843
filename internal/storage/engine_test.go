package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lotar-dev/lotar/internal/events"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(t.TempDir(), events.NewBus())
}

func TestCreateAllocatesSequentialIDs(t *testing.T) {
	e := newTestEngine(t)

	id1, err := e.Create("SERV", Task{Title: "First", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id2, err := e.Create("SERV", Task{Title: "Second", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if id1 != "SERV-1" || id2 != "SERV-2" {
		t.Fatalf("got ids %s, %s; want SERV-1, SERV-2", id1, id2)
	}
}

func TestCreateAllocatesAcrossGap(t *testing.T) {
	e := newTestEngine(t)
	dir := e.ProjectDir("SERV")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "1.yml"), []byte("id: SERV-1\ntitle: a\nstatus: Todo\npriority: Medium\ntype: Feature\ncreated: 2024-01-01T00:00:00Z\nmodified: 2024-01-01T00:00:00Z\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "3.yml"), []byte("id: SERV-3\ntitle: c\nstatus: Todo\npriority: Medium\ntype: Feature\ncreated: 2024-01-01T00:00:00Z\nmodified: 2024-01-01T00:00:00Z\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	id, err := e.Create("SERV", Task{Title: "Fourth", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "SERV-4" {
		t.Fatalf("got %s, want SERV-4", id)
	}
}

func TestCreateThenGetRoundTrips(t *testing.T) {
	e := newTestEngine(t)

	id, err := e.Create("SERV", Task{Title: "Add retries", Status: "Todo", Priority: "High", Type: "Feature", Tags: []string{"alpha"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := e.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Add retries" || got.Status != "Todo" || got.Priority != "High" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Created.IsZero() || got.Modified.IsZero() {
		t.Fatal("expected Created and Modified to be set")
	}
}

func TestGetNotFound(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Get("SERV-1"); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestEditEmptyPatchIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.Create("SERV", Task{Title: "X", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatal(err)
	}

	before, err := e.Get(id)
	if err != nil {
		t.Fatal(err)
	}

	after, err := e.Edit(id, "dev", func(current Task) (Task, error) {
		return current, nil
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	if !after.Modified.Equal(before.Modified) {
		t.Errorf("Modified changed on no-op edit: before=%v after=%v", before.Modified, after.Modified)
	}
}

func TestEditBumpsModifiedAndAppendsHistoryOnStatusChange(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.Create("SERV", Task{Title: "X", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatal(err)
	}
	before, err := e.Get(id)
	if err != nil {
		t.Fatal(err)
	}

	after, err := e.Edit(id, "dev", func(current Task) (Task, error) {
		current.Status = "Done"
		return current, nil
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	if after.Status != "Done" {
		t.Fatalf("status = %s, want Done", after.Status)
	}
	if len(after.History) != 1 || after.History[0].From != "Todo" || after.History[0].To != "Done" {
		t.Fatalf("unexpected history: %+v", after.History)
	}
	if !after.Modified.After(before.Modified) {
		t.Fatalf("Modified not bumped: before=%v after=%v", before.Modified, after.Modified)
	}
}

func TestDeleteDoesNotRecycleID(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.Create("SERV", Task{Title: "X", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	next, err := e.Create("SERV", Task{Title: "Y", Status: "Todo", Priority: "Medium", Type: "Feature"})
	if err != nil {
		t.Fatal(err)
	}
	if next != "SERV-2" {
		t.Fatalf("got %s, want SERV-2 (no id recycling)", next)
	}
}

func TestSearchByStatusAndTags(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Create("SERV", Task{Title: "A", Status: "Todo", Priority: "Medium", Type: "Feature", Tags: []string{"api", "urgent"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Create("SERV", Task{Title: "B", Status: "Done", Priority: "Medium", Type: "Feature", Tags: []string{"api"}}); err != nil {
		t.Fatal(err)
	}

	found, err := e.Search(Filter{Project: "SERV", Status: []string{"Todo"}, Tags: []string{"urgent"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].Task.Title != "A" {
		t.Fatalf("unexpected search result: %+v", found)
	}
}

func TestListCreateList(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Create("SERV", Task{Title: "Add retries", Status: "Todo", Priority: "Medium", Type: "Feature"}); err != nil {
		t.Fatal(err)
	}

	found, err := e.Search(Filter{Project: "SERV"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ID != "SERV-1" {
		t.Fatalf("got %v, want [SERV-1]", found)
	}
}
