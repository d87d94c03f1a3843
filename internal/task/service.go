// Package task implements the Task Service of spec.md §4.E: a
// policy-bearing facade over internal/storage that resolves the
// target project, validates enum fields against the resolved
// configuration, applies auto-population rules, and emits events.
// Grounded on the shape of the teacher's deleted internal/workflow
// guard-then-transition pattern (validate before mutate, diff then
// apply) — reapplied here to task field validation instead of
// workflow steps.
package task

import (
	"path/filepath"
	"strings"

	"github.com/lotar-dev/lotar/internal/config"
	"github.com/lotar-dev/lotar/internal/events"
	"github.com/lotar-dev/lotar/internal/identity"
	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/slices"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/vcs"
)

// Service is the CRUD facade over storage.Engine.
type Service struct {
	Engine   *storage.Engine
	TasksRoot string
	RepoRoot string
	Bus      *events.Bus
}

// New creates a Service backed by engine, rooted at tasksRoot for
// config resolution and repoRoot for git-derived auto-population.
func New(engine *storage.Engine, tasksRoot, repoRoot string, bus *events.Bus) *Service {
	return &Service{Engine: engine, TasksRoot: tasksRoot, RepoRoot: repoRoot, Bus: bus}
}

// CreateInput is the create(dto) payload of spec.md §4.E. Path, when
// set, is the source file a scanner-originated task references; it
// drives auto_tags_from_path and auto_codeowners_assign.
type CreateInput struct {
	Project     string
	Title       string
	Description string
	Status      string
	Priority    string
	Type        string
	Assignee    string
	Reporter    string
	DueDate     string
	Effort      string
	Tags        []string
	Category    string
	CustomFields map[string]any
	References  []storage.Reference
	Path        string // source file path driving path/codeowners auto-population
}

// Create resolves the target project, validates enum fields, applies
// auto-population, and delegates to Storage.Create.
func (s *Service) Create(in CreateInput) (*storage.Task, error) {
	resolved, err := config.Resolve(s.TasksRoot, in.Project)
	if err != nil {
		return nil, err
	}

	project := in.Project
	if project == "" {
		project = resolved.DefaultProject
	}
	if project == "" {
		return nil, lotarerrors.New(lotarerrors.KindValidation, "no project specified and no default_project configured").WithField("project")
	}

	status := in.Status
	if status == "" {
		status = resolved.DefaultStatus
	}
	priority := in.Priority
	if priority == "" {
		priority = resolved.DefaultPriority
	}
	taskType := in.Type
	if taskType == "" && len(resolved.IssueTypes) > 0 {
		taskType = resolved.IssueTypes[0]
	}

	if err := validateEnum("status", status, resolved.IssueStates); err != nil {
		return nil, err
	}
	if err := validateEnum("priority", priority, resolved.IssuePriorities); err != nil {
		return nil, err
	}
	if err := validateEnum("type", taskType, resolved.IssueTypes); err != nil {
		return nil, err
	}

	reporter := in.Reporter
	if reporter == "" && resolved.AutoSetReporter {
		reporter = identity.CurrentUser(s.RepoRoot)
	}

	assignee := in.Assignee
	if assignee == "" && resolved.AutoCodeowners && in.Path != "" {
		assignee = ownerForPath(s.RepoRoot, in.Path)
	}

	tags := append([]string(nil), in.Tags...)
	if resolved.AutoTagsFromPath && in.Path != "" {
		if tag := topLevelDirTag(in.Path); tag != "" && slices.IndexOf(tags, tag) < 0 {
			tags = append(tags, tag)
		}
	}

	if resolved.AutoInferBranch {
		if branch := currentBranch(s.RepoRoot); branch != "" {
			if in.Type == "" {
				if v, ok := matchAlias(branch, resolved.BranchTypeAliases); ok {
					taskType = v
				}
			}
			if in.Status == "" {
				if v, ok := matchAlias(branch, resolved.BranchStatusAliases); ok {
					status = v
				}
			}
			if in.Priority == "" {
				if v, ok := matchAlias(branch, resolved.BranchPriorityAliases); ok {
					priority = v
				}
			}
		}
	}

	t := storage.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Type:        taskType,
		Assignee:    assignee,
		Reporter:    reporter,
		DueDate:     in.DueDate,
		Effort:      in.Effort,
		Tags:        tags,
		Category:    in.Category,
		References:  in.References,
	}
	for k, v := range in.CustomFields {
		t.SetCustomField(k, v)
	}

	id, err := s.Engine.Create(project, t)
	if err != nil {
		return nil, err
	}
	return s.Engine.Get(id)
}

// Patch is a partial update; nil fields are left alone. A non-nil Tags
// slice, even an empty one, replaces the task's tags.
type Patch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Type        *string
	Assignee    *string
	DueDate     *string
	Effort      *string
	Tags        []string
	Category    *string
	CustomFields map[string]any
	AddReferences []storage.Reference
	ReplaceReferences []storage.Reference // non-nil wholesale-replaces References, used by reconcile
}

// Update loads the current task, applies patch (dropping any field
// whose new value equals the current one), re-validates enum fields
// against the owning project's resolved config, and delegates to
// Storage.Edit.
func (s *Service) Update(id, actor string, patch Patch) (*storage.Task, error) {
	prefix, _, err := storage.SplitID(id)
	if err != nil {
		return nil, err
	}
	resolved, err := config.Resolve(s.TasksRoot, prefix)
	if err != nil {
		return nil, err
	}

	return s.Engine.Edit(id, actor, func(current storage.Task) (storage.Task, error) {
		next := current

		if patch.Title != nil && *patch.Title != current.Title {
			next.Title = *patch.Title
		}
		if patch.Description != nil && *patch.Description != current.Description {
			next.Description = *patch.Description
		}
		if patch.Status != nil && *patch.Status != current.Status {
			if err := validateEnum("status", *patch.Status, resolved.IssueStates); err != nil {
				return storage.Task{}, err
			}
			next.Status = *patch.Status
			if resolved.AssignOnStatus && next.Assignee == "" {
				next.Assignee = identity.CurrentUser(s.RepoRoot)
			}
		}
		if patch.Priority != nil && *patch.Priority != current.Priority {
			if err := validateEnum("priority", *patch.Priority, resolved.IssuePriorities); err != nil {
				return storage.Task{}, err
			}
			next.Priority = *patch.Priority
		}
		if patch.Type != nil && *patch.Type != current.Type {
			if err := validateEnum("type", *patch.Type, resolved.IssueTypes); err != nil {
				return storage.Task{}, err
			}
			next.Type = *patch.Type
		}
		if patch.Assignee != nil && *patch.Assignee != current.Assignee {
			next.Assignee = *patch.Assignee
		}
		if patch.DueDate != nil && *patch.DueDate != current.DueDate {
			next.DueDate = *patch.DueDate
		}
		if patch.Effort != nil && *patch.Effort != current.Effort {
			next.Effort = *patch.Effort
		}
		if patch.Category != nil && *patch.Category != current.Category {
			next.Category = *patch.Category
		}
		if patch.Tags != nil {
			next.Tags = patch.Tags
		}
		for k, v := range patch.CustomFields {
			next.SetCustomField(k, v)
		}
		for _, ref := range patch.AddReferences {
			next.AddReference(ref)
		}
		if patch.ReplaceReferences != nil {
			next.References = patch.ReplaceReferences
		}

		return next, nil
	})
}

// Get delegates directly to storage.
func (s *Service) Get(id string) (*storage.Task, error) {
	return s.Engine.Get(id)
}

// List delegates to storage.Search.
func (s *Service) List(f storage.Filter) ([]storage.Found, error) {
	return s.Engine.Search(f)
}

// Delete removes a task and publishes task_deleted via the engine.
func (s *Service) Delete(id string) error {
	return s.Engine.Delete(id)
}

func validateEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, v := range allowed {
		if strings.EqualFold(v, value) {
			return nil
		}
	}
	return lotarerrors.New(lotarerrors.KindValidation, field+" "+value+" is not one of "+strings.Join(allowed, ", ")).WithField(field)
}

func topLevelDirTag(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	parts := strings.Split(clean, "/")
	if len(parts) > 1 && parts[0] != "." && parts[0] != "" {
		return parts[0]
	}
	return ""
}

func matchAlias(branch string, aliases map[string]string) (string, bool) {
	lower := strings.ToLower(branch)
	for substr, value := range aliases {
		if strings.Contains(lower, strings.ToLower(substr)) {
			return value, true
		}
	}
	return "", false
}

func currentBranch(repoRoot string) string {
	g, err := vcs.New(repoRoot)
	if err != nil {
		return ""
	}
	branch, err := g.CurrentBranch()
	if err != nil {
		return ""
	}
	return branch
}
