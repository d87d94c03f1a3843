// Package storage implements the Workspace & Storage Engine of
// spec.md §4.C: per-project folders, sequential id allocation, atomic
// YAML read/write, and history capture. It is grounded on the
// teacher's atomic temp+rename write pattern and its flock-based
// FileLock (lock.go, kept nearly verbatim).
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/events"
)

// Engine is the on-disk task store rooted at a tasks directory.
type Engine struct {
	root string
	bus  *events.Bus
}

// New creates an Engine rooted at root. bus may be nil, in which case
// mutations are silent (used by tests that don't assert on events).
func New(root string, bus *events.Bus) *Engine {
	return &Engine{root: root, bus: bus}
}

// Root returns the tasks root directory.
func (e *Engine) Root() string {
	return e.root
}

// ProjectDir returns the directory for a project prefix.
func (e *Engine) ProjectDir(prefix string) string {
	return filepath.Join(e.root, prefix)
}

func (e *Engine) taskPath(prefix string, id int) string {
	return filepath.Join(e.ProjectDir(prefix), strconv.Itoa(id)+".yml")
}

func (e *Engine) lockPath(prefix string) string {
	return filepath.Join(e.ProjectDir(prefix), ".lock")
}

// ListProjects enumerates project directories under the tasks root.
func (e *Engine) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lotarerrors.Wrap(lotarerrors.KindIO, "list projects", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != "sync-reports" && entry.Name() != "sprints" {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// maxExistingID scans <root>/<prefix> for integer-stem .yml files and
// returns the highest id found, or 0 if none exist. Not lock-protected;
// callers serialize via the project's file lock.
func (e *Engine) maxExistingID(prefix string) (int, error) {
	entries, err := os.ReadDir(e.ProjectDir(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yml") {
			continue
		}
		stem := strings.TrimSuffix(name, ".yml")
		id, err := strconv.Atoi(stem)
		if err != nil {
			continue // not an integer-stem file; ignore per spec.md §4.C
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}

// Create allocates the next id in prefix, writes task atomically, and
// emits task_created. Concurrent creators are serialized by the
// project's advisory file lock across read-max + write.
func (e *Engine) Create(prefix string, task Task) (string, error) {
	var id int
	err := WithLockTimeout(e.lockPath(prefix), 10*time.Second, func() error {
		max, err := e.maxExistingID(prefix)
		if err != nil {
			return lotarerrors.Wrap(lotarerrors.KindIO, "scan existing task ids", err)
		}
		id = max + 1

		now := time.Now().UTC()
		task.ID = fmt.Sprintf("%s-%d", prefix, id)
		task.Created = now
		task.Modified = now

		return e.writeAtomic(e.taskPath(prefix, id), task)
	})
	if err != nil {
		return "", err
	}

	e.publish(events.TaskCreatedEvent{TaskID: task.ID, Project: prefix})
	return task.ID, nil
}

// Get loads a single task by id.
func (e *Engine) Get(id string) (*Task, error) {
	prefix, n, err := SplitID(id)
	if err != nil {
		return nil, err
	}

	path := e.taskPath(prefix, n)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lotarerrors.New(lotarerrors.KindTaskNotFound, "task "+id+" not found")
		}
		return nil, lotarerrors.Wrap(lotarerrors.KindIO, "read task file", err)
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, lotarerrors.Wrap(lotarerrors.KindInvalidTaskFile, "parse "+path, err).WithField(path)
	}

	return &task, nil
}

// Updater receives the current task and returns the desired next state.
// Returning the same value (field-for-field) is treated as a no-op.
type Updater func(current Task) (Task, error)

// Edit performs a read-modify-write under the project's lock. If the
// updater produces a diff, Edit bumps Modified, appends a history entry
// when the status changed, and rewrites atomically; if the result is identical to the
// input, no file write or event occurs (update-with-empty-patch
// idempotence, spec.md §8).
func (e *Engine) Edit(id string, actor string, fn Updater) (*Task, error) {
	prefix, n, err := SplitID(id)
	if err != nil {
		return nil, err
	}

	var result Task
	var changed bool

	lockErr := WithLockTimeout(e.lockPath(prefix), 10*time.Second, func() error {
		path := e.taskPath(prefix, n)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return lotarerrors.New(lotarerrors.KindTaskNotFound, "task "+id+" not found")
			}
			return lotarerrors.Wrap(lotarerrors.KindIO, "read task file", err)
		}

		var current Task
		if err := yaml.Unmarshal(data, &current); err != nil {
			return lotarerrors.Wrap(lotarerrors.KindInvalidTaskFile, "parse "+path, err).WithField(path)
		}

		next, err := fn(current.Clone())
		if err != nil {
			return err
		}

		if tasksEqualIgnoringModified(current, next) {
			result = current
			return nil
		}

		if next.Status != current.Status {
			next.History = append(next.History, HistoryEntry{
				From:  current.Status,
				To:    next.Status,
				At:    time.Now().UTC(),
				Actor: actor,
			})
		}
		next.Modified = time.Now().UTC()
		next.ID = current.ID
		next.Created = current.Created

		if err := e.writeAtomic(path, next); err != nil {
			return err
		}

		result = next
		changed = true
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}

	if changed {
		e.publish(events.TaskUpdatedEvent{TaskID: id})
	}

	return &result, nil
}

// Delete removes a task's file. The id is never recycled.
func (e *Engine) Delete(id string) error {
	prefix, n, err := SplitID(id)
	if err != nil {
		return err
	}

	err = WithLockTimeout(e.lockPath(prefix), 10*time.Second, func() error {
		path := e.taskPath(prefix, n)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return lotarerrors.New(lotarerrors.KindTaskNotFound, "task "+id+" not found")
			}
			return lotarerrors.Wrap(lotarerrors.KindIO, "delete task file", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.publish(events.TaskDeletedEvent{TaskID: id})
	return nil
}

// writeAtomic serializes task to YAML and writes it via temp+rename in
// the same directory, guaranteeing no partial write is ever observable.
func (e *Engine) writeAtomic(path string, task Task) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lotarerrors.Wrap(lotarerrors.KindIO, "create project directory", err)
	}

	data, err := yaml.Marshal(task)
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindSerialization, "encode task", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.yml")
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindIO, "create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return lotarerrors.Wrap(lotarerrors.KindIO, "rename into place", err)
	}

	return nil
}

func (e *Engine) publish(ev events.Eventer) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// SplitID decomposes "PREFIX-N" into its prefix and numeric suffix.
func SplitID(id string) (prefix string, n int, err error) {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, lotarerrors.New(lotarerrors.KindInvalidTaskID, "malformed task id "+id).WithField("id")
	}
	n, convErr := strconv.Atoi(id[idx+1:])
	if convErr != nil || n <= 0 {
		return "", 0, lotarerrors.New(lotarerrors.KindInvalidTaskID, "malformed task id "+id).WithField("id")
	}
	return id[:idx], n, nil
}

// tasksEqualIgnoringModified reports whether two tasks are identical in
// every field except Modified, used to detect no-op updates.
func tasksEqualIgnoringModified(a, b Task) bool {
	a.Modified = time.Time{}
	b.Modified = time.Time{}
	ay, err1 := yaml.Marshal(a)
	by, err2 := yaml.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ay) == string(by)
}
