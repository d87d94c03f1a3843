package sync

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

// Persist writes report under tasksRoot/sync-reports/<remote>-<ts>.yml,
// atomically, the same temp-file-then-rename pattern the storage engine
// uses for task files (spec.md §4.H "the full report may optionally be
// persisted").
func (r *Report) Persist(tasksRoot string, ts string) (string, error) {
	dir := filepath.Join(tasksRoot, "sync-reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "create sync-reports directory", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", lotarerrors.Wrap(lotarerrors.KindSerialization, "encode sync report", err)
	}

	path := filepath.Join(dir, r.Remote+"-"+ts+".yml")
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "create temp sync report", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "write sync report", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "sync sync report", err)
	}
	if err := tmp.Close(); err != nil {
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "close sync report", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", lotarerrors.Wrap(lotarerrors.KindIO, "finalize sync report", err)
	}
	return path, nil
}
