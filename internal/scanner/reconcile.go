package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lotar-dev/lotar/internal/reference"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
)

// ApplyOptions configures the reconcile step that turns scan entries
// into tasks and code references (spec.md §4.F "Reference anchoring").
type ApplyOptions struct {
	Service  *task.Service
	Project  string
	RepoRoot string
	DryRun   bool
	Reanchor bool
}

// Outcome records what happened to one scan entry during reconcile.
type Outcome struct {
	Entry      Entry
	Status     string // created, updated, skipped, failed
	TaskID     string
	UpdatedLine string // proposed or applied new source line
	Note       string
}

// Reconcile applies each entry in result against the task store. In
// dry-run mode no files or tasks are mutated; Outcome.UpdatedLine still
// carries the line that would be written.
func Reconcile(opts ApplyOptions, result Result) []Outcome {
	outcomes := make([]Outcome, 0, len(result.Entries))

	byFile := map[string][]int{}
	for i, e := range result.Entries {
		byFile[e.File] = append(byFile[e.File], i)
	}

	for file, idxs := range byFile {
		lineEdits := map[int]string{}
		for _, i := range idxs {
			e := result.Entries[i]
			outcome := reconcileEntry(opts, e)
			if outcome.UpdatedLine != "" {
				lineEdits[e.Line] = outcome.UpdatedLine
			}
			outcomes = append(outcomes, outcome)
		}
		if !opts.DryRun && len(lineEdits) > 0 {
			if err := rewriteLines(filepath.Join(opts.RepoRoot, file), lineEdits); err != nil {
				for i := range outcomes {
					if outcomes[i].Entry.File == file {
						if _, ok := lineEdits[outcomes[i].Entry.Line]; ok {
							outcomes[i].Status = "failed"
							outcomes[i].Note = err.Error()
						}
					}
				}
			}
		}
	}

	return outcomes
}

func reconcileEntry(opts ApplyOptions, e Entry) Outcome {
	out := Outcome{Entry: e}

	if e.ExistingKey == "" {
		codeRef := fmt.Sprintf("%s#%d", e.File, e.Line)
		if opts.DryRun {
			out.Status = "created"
			out.UpdatedLine = insertIDIntoLine(e.RawLine, e.Signal, "<new-id>")
			return out
		}

		created, err := opts.Service.Create(task.CreateInput{
			Project:    opts.Project,
			Title:      e.Title,
			Path:       e.File,
			References: []storage.Reference{{Code: codeRef}},
			Status:     e.Annotation["status"],
			Priority:   e.Annotation["priority"],
			Type:       e.Annotation["type"],
			Assignee:   e.Annotation["assignee"],
			DueDate:    e.Annotation["due"],
			Effort:     e.Annotation["effort"],
			Tags:       splitTags(e.Annotation["tags"]),
		})
		if err != nil {
			out.Status = "failed"
			out.Note = err.Error()
			return out
		}

		out.Status = "created"
		out.TaskID = created.ID
		out.UpdatedLine = insertIDIntoLine(e.RawLine, e.Signal, created.ID)
		return out
	}

	existing, err := opts.Service.Get(e.ExistingKey)
	if err != nil {
		out.Status = "skipped"
		out.Note = "reference does not match remote"
		return out
	}

	codeRef := fmt.Sprintf("%s#%d", e.File, e.Line)
	next, changed := reference.ReconcileCode(existing.References, codeRef, opts.Reanchor)
	if !changed {
		out.Status = "skipped"
		out.TaskID = existing.ID
		return out
	}
	if opts.DryRun {
		out.Status = "updated"
		out.TaskID = existing.ID
		return out
	}

	refs := append([]storage.Reference(nil), next...)
	if _, err := opts.Service.Update(existing.ID, "scanner", task.Patch{ReplaceReferences: refs}); err != nil {
		out.Status = "failed"
		out.Note = err.Error()
		return out
	}
	out.Status = "updated"
	out.TaskID = existing.ID
	return out
}

func splitTags(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// insertIDIntoLine inserts "(id)" immediately after the signal word
// (e.g. "TODO(SERV-2): Add retry logic") and strips trailing bracketed
// attributes, per spec.md §4.F.
func insertIDIntoLine(line, signal, id string) string {
	stripped := attributesRe.ReplaceAllString(line, "")
	stripped = strings.TrimRight(stripped, " \t")

	if signal == "" {
		return stripped + " (" + id + ")"
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(signal) + `\b`)
	loc := re.FindStringIndex(stripped)
	if loc == nil {
		return stripped + " (" + id + ")"
	}
	return stripped[:loc[1]] + "(" + id + ")" + stripped[loc[1]:]
}

// rewriteLines replaces the given 1-indexed line numbers in path and
// writes the result back atomically (read, replace, write-via-rename).
func rewriteLines(path string, edits map[int]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	f.Close()
	if err := scanner.Err(); err != nil {
		return err
	}

	for lineNo, replacement := range edits {
		if lineNo-1 < 0 || lineNo-1 >= len(lines) {
			continue
		}
		lines[lineNo-1] = replacement
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	content := strings.Join(lines, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
