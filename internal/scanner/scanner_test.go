package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanExtractsSignalWordLine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\n// TODO: fix the retry logic [priority=High,tags=infra|urgent]\nfunc main() {}\n")

	result, err := Scan(context.Background(), Options{
		Root:        root,
		SignalWords: []string{"TODO", "FIXME"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(result.Entries), result.Entries)
	}
	e := result.Entries[0]
	if e.Title != "fix the retry logic" {
		t.Fatalf("Title = %q", e.Title)
	}
	if e.Annotation["priority"] != "High" {
		t.Fatalf("Annotation[priority] = %q", e.Annotation["priority"])
	}
	if e.Line != 3 {
		t.Fatalf("Line = %d, want 3", e.Line)
	}
}

func TestScanSkipsUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data.bin"), "TODO this is not a comment\n")

	result, err := Scan(context.Background(), Options{Root: root, SignalWords: []string{"TODO"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("expected no entries for unsupported extension, got %d", len(result.Entries))
	}
}

func TestScanSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "hooks.py"), "# TODO: ignored\n")

	result, err := Scan(context.Background(), Options{Root: root, SignalWords: []string{"TODO"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("expected hidden directory to be skipped, got %d entries", len(result.Entries))
	}
}

func TestScanExtractsExistingTicketKey(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "# FIXME SERV-12: handle nil pointer\n")

	result, err := Scan(context.Background(), Options{
		Root:           root,
		SignalWords:    []string{"FIXME"},
		TicketPatterns: []string{`[A-Z]+-\d+`},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if result.Entries[0].ExistingKey != "SERV-12" {
		t.Fatalf("ExistingKey = %q, want SERV-12", result.Entries[0].ExistingKey)
	}
}

func TestScanRecognizesBuiltinAnchorRegardlessOfTicketPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "// TODO(SERV-2): Add retry logic\n")

	result, err := Scan(context.Background(), Options{
		Root:        root,
		SignalWords: []string{"TODO"},
		// No TicketPatterns configured: builtin anchor detection must
		// still recognize the canonical form this package emits.
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	e := result.Entries[0]
	if e.ExistingKey != "SERV-2" {
		t.Fatalf("ExistingKey = %q, want SERV-2", e.ExistingKey)
	}
	if e.Title != "Add retry logic" {
		t.Fatalf("Title = %q, want %q", e.Title, "Add retry logic")
	}
}

func TestScanTitleKeepsTrailingParen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "// TODO: handle f(x)\n")

	result, err := Scan(context.Background(), Options{Root: root, SignalWords: []string{"TODO"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if got, want := result.Entries[0].Title, "handle f(x)"; got != want {
		t.Fatalf("Title = %q, want %q", got, want)
	}
}

func TestScanSortsByFileThenLine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "// TODO one\n// TODO two\n")
	writeFile(t, filepath.Join(root, "a.go"), "// TODO three\n")

	result, err := Scan(context.Background(), Options{Root: root, SignalWords: []string{"TODO"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].File != "a.go" {
		t.Fatalf("expected a.go to sort first, got %q", result.Entries[0].File)
	}
	if result.Entries[1].File != "b.go" || result.Entries[1].Line != 1 {
		t.Fatalf("unexpected second entry: %+v", result.Entries[1])
	}
}
