package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

// Filter describes the predicates search applies; zero values mean "no
// constraint on this dimension" (spec.md §4.C).
type Filter struct {
	Project        string
	Status         []string
	Priority       []string
	Type           []string
	Tags           []string // required tags: task.Tags must be a superset
	Text           string   // case-insensitive match across title/description/tags
	CustomField    string
	CustomValue    any
}

// Found pairs a task's id with its loaded value.
type Found struct {
	ID   string
	Task Task
}

// Search loads task files in scope and applies f's predicates. Reads
// never hold a project lock past the individual file parse (spec.md
// §4.C durability contract). Sorting/paging is the caller's
// responsibility.
func (e *Engine) Search(f Filter) ([]Found, error) {
	projects := []string{f.Project}
	if f.Project == "" {
		all, err := e.ListProjects()
		if err != nil {
			return nil, err
		}
		projects = all
	}

	var results []Found
	for _, prefix := range projects {
		entries, err := os.ReadDir(e.ProjectDir(prefix))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, lotarerrors.Wrap(lotarerrors.KindIO, "read project directory", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
				continue
			}
			stem := strings.TrimSuffix(entry.Name(), ".yml")
			if _, err := strconv.Atoi(stem); err != nil {
				continue
			}

			path := filepath.Join(e.ProjectDir(prefix), entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}

			var task Task
			if err := yaml.Unmarshal(data, &task); err != nil {
				continue // malformed file; skip rather than abort the whole search
			}

			if matches(task, f) {
				results = append(results, Found{ID: task.ID, Task: task})
			}
		}
	}

	return results, nil
}

func matches(t Task, f Filter) bool {
	if len(f.Status) > 0 && !containsFold(f.Status, t.Status) {
		return false
	}
	if len(f.Priority) > 0 && !containsFold(f.Priority, t.Priority) {
		return false
	}
	if len(f.Type) > 0 && !containsFold(f.Type, t.Type) {
		return false
	}
	if len(f.Tags) > 0 && !supersetFold(t.Tags, f.Tags) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		haystack := strings.ToLower(t.Title + " " + t.Description + " " + strings.Join(t.Tags, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.CustomField != "" {
		value, ok := t.GetCustomField(f.CustomField)
		if !ok {
			return false
		}
		if f.CustomValue != nil && value != f.CustomValue {
			return false
		}
	}
	return true
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func supersetFold(have, want []string) bool {
	for _, w := range want {
		if !containsFold(have, w) {
			return false
		}
	}
	return true
}
