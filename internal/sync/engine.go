package sync

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/events"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
)

// Engine orchestrates push/pull runs against one remote, grounded on
// the teacher's cache-invalidate-then-refetch pattern (internal/cache)
// for the pre-write diff step.
type Engine struct {
	Client  Client
	Remote  RemoteConfig
	Service *task.Service
	Bus     *events.Bus
	// DryRun computes and reports what a run would do without issuing
	// any write (Client.Create/Update/SetStatus or Service.Create/Update).
	DryRun bool
}

// New creates a sync Engine bound to client for the given remote.
func New(client Client, remote RemoteConfig, service *task.Service, bus *events.Bus) *Engine {
	return &Engine{Client: client, Remote: remote, Service: service, Bus: bus}
}

type refState int

const (
	refNone refState = iota
	refMatching
	refProviderOnly
)

// providerRef returns the reference value a task carries for this
// remote's provider, or "" if it has none.
func providerRef(t storage.Task, p Provider) string {
	for _, r := range t.References {
		switch p {
		case ProviderJira:
			if r.Jira != "" {
				return r.Jira
			}
		case ProviderGitHub:
			if r.GitHub != "" {
				return r.GitHub
			}
		}
	}
	return ""
}

func (e *Engine) referenceState(t *storage.Task) (refState, string) {
	ref := providerRef(*t, e.Remote.Provider)
	if ref == "" {
		return refNone, ""
	}
	switch e.Remote.Provider {
	case ProviderJira:
		if strings.HasPrefix(ref, e.Remote.Project+"-") {
			return refMatching, ref
		}
	case ProviderGitHub:
		if strings.HasPrefix(ref, e.Remote.Repo+"#") {
			return refMatching, ref
		}
	}
	return refProviderOnly, ref
}

func taskFields(t storage.Task) map[string]string {
	return map[string]string{
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"type":        t.Type,
		"priority":    t.Priority,
		"assignee":    t.Assignee,
		"reporter":    t.Reporter,
	}
}

func (e *Engine) publish(ev events.Eventer) {
	if e.Bus != nil {
		e.Bus.Publish(ev)
	}
}

// Push syncs every task in scope to the remote per spec.md §4.H.
func (e *Engine) Push(ctx context.Context, tasks []*storage.Task) (*Report, error) {
	report := &Report{Remote: e.Remote.Name, Direction: DirectionPush, DryRun: e.DryRun, Started: time.Now().UTC()}
	e.publish(events.SyncStartedEvent{Remote: e.Remote.Name, Direction: string(DirectionPush)})

	for _, t := range tasks {
		select {
		case <-ctx.Done():
			e.publish(events.SyncFailedEvent{Remote: e.Remote.Name, Direction: string(DirectionPush), Err: ctx.Err().Error()})
			return report, ctx.Err()
		default:
		}

		item, transportErr := e.pushOne(ctx, t)
		if transportErr != nil {
			e.publish(events.SyncFailedEvent{Remote: e.Remote.Name, Direction: string(DirectionPush), Err: transportErr.Error()})
			return report, transportErr
		}
		report.record(item)
		e.publish(events.SyncProgressEvent{Remote: e.Remote.Name, TaskID: t.ID, Action: item.Action})
	}

	report.Finished = time.Now().UTC()
	e.publish(events.SyncCompletedEvent{
		Remote: e.Remote.Name, Direction: string(DirectionPush),
		Created: report.Created, Updated: report.Updated, Skipped: report.Skipped, Conflicts: report.Failed,
	})
	return report, nil
}

// pushOne's second return value carries authentication failures
// (KindRemoteAuth) and transport failures (a *url.Error from the HTTP
// client), which abort the whole run (spec.md §4.H "Failure semantics");
// every other failure is captured in the returned ItemResult instead.
func (e *Engine) pushOne(ctx context.Context, t *storage.Task) (ItemResult, error) {
	abort := func(err error) error {
		var urlErr *url.Error
		if lotarerrors.Is(err, lotarerrors.KindRemoteAuth) || errors.As(err, &urlErr) {
			return err
		}
		return nil
	}
	state, ref := e.referenceState(t)

	switch state {
	case refProviderOnly:
		return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "skipped", Message: "reference belongs to a different remote"}, nil

	case refMatching:
		current, err := e.Client.Get(ctx, ref)
		if err != nil {
			return ItemResult{TaskID: t.ID, Action: "failed", Message: err.Error()}, abort(err)
		}
		fields, labels := BuildPushPayload(taskFields(*t), t.Tags, e.Remote.Mapping)
		statusChanged := false
		if desired, ok := fields["status"]; ok && !strings.EqualFold(desired, current.Fields["status"]) {
			statusChanged = true
			delete(fields, "status")
		}
		diffed := DiffFields(current.Fields, fields)
		labelsChanged, nextLabels := DiffLabels(current.Labels, labels)

		if len(diffed) == 0 && !labelsChanged && !statusChanged {
			return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "skipped", Message: "No changes to push"}, nil
		}
		if e.DryRun {
			return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "updated", Message: "dry run: no write issued"}, nil
		}
		if len(diffed) > 0 || labelsChanged {
			if err := e.Client.Update(ctx, ref, diffed, nextLabels); err != nil {
				return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "failed", Message: err.Error()}, abort(err)
			}
		}
		if statusChanged {
			desired, _ := BuildPushPayload(taskFields(*t), t.Tags, e.Remote.Mapping)
			if err := e.Client.SetStatus(ctx, ref, desired["status"]); err != nil {
				return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "failed", Message: err.Error()}, abort(err)
			}
		}
		return ItemResult{TaskID: t.ID, RemoteRef: ref, Action: "updated"}, nil

	default: // refNone
		if e.DryRun {
			return ItemResult{TaskID: t.ID, Action: "created", Message: "dry run: no write issued"}, nil
		}
		fields, labels := BuildPushPayload(taskFields(*t), t.Tags, e.Remote.Mapping)
		created, err := e.Client.Create(ctx, fields, labels)
		if err != nil {
			return ItemResult{TaskID: t.ID, Action: "failed", Message: err.Error()}, abort(err)
		}
		if err := e.attachReference(t.ID, created.Ref); err != nil {
			return ItemResult{TaskID: t.ID, RemoteRef: created.Ref, Action: "failed", Message: err.Error()}, nil
		}
		return ItemResult{TaskID: t.ID, RemoteRef: created.Ref, Action: "created"}, nil
	}
}

func (e *Engine) attachReference(taskID, ref string) error {
	current, err := e.Service.Get(taskID)
	if err != nil {
		return err
	}
	newRef := storage.Reference{}
	switch e.Remote.Provider {
	case ProviderJira:
		newRef.Jira = ref
	case ProviderGitHub:
		newRef.GitHub = ref
	}
	refs := append(append([]storage.Reference(nil), current.References...), newRef)
	_, err = e.Service.Update(taskID, "sync", task.Patch{ReplaceReferences: refs})
	return err
}

// Pull lists remote issues in scope and reconciles them against local
// tasks, creating or updating as needed, per spec.md §4.H.
func (e *Engine) Pull(ctx context.Context, targetProject string) (*Report, error) {
	report := &Report{Remote: e.Remote.Name, Direction: DirectionPull, DryRun: e.DryRun, Started: time.Now().UTC()}
	e.publish(events.SyncStartedEvent{Remote: e.Remote.Name, Direction: string(DirectionPull)})

	page := 0
	for {
		select {
		case <-ctx.Done():
			e.publish(events.SyncFailedEvent{Remote: e.Remote.Name, Direction: string(DirectionPull), Err: ctx.Err().Error()})
			return report, ctx.Err()
		default:
		}

		issues, hasMore, err := e.Client.List(ctx, e.Remote.Filter, page)
		if err != nil {
			e.publish(events.SyncFailedEvent{Remote: e.Remote.Name, Direction: string(DirectionPull), Err: err.Error()})
			return report, err
		}

		for _, issue := range issues {
			item := e.pullOne(issue, targetProject)
			report.record(item)
			e.publish(events.SyncProgressEvent{Remote: e.Remote.Name, TaskID: item.TaskID, Action: item.Action})
		}

		if !hasMore {
			break
		}
		page++
	}

	report.Finished = time.Now().UTC()
	e.publish(events.SyncCompletedEvent{
		Remote: e.Remote.Name, Direction: string(DirectionPull),
		Created: report.Created, Updated: report.Updated, Skipped: report.Skipped, Conflicts: report.Failed,
	})
	return report, nil
}

func (e *Engine) pullOne(issue *RemoteIssue, targetProject string) ItemResult {
	local := e.findLocalByReference(issue.Ref)

	fields, tags := ApplyPullPayload(issue, e.Remote.Mapping)

	if local != nil {
		diffed := DiffFields(taskFields(*local), fields)
		changed, nextTags := DiffLabels(local.Tags, tags)
		if len(diffed) == 0 && !changed {
			return ItemResult{TaskID: local.ID, RemoteRef: issue.Ref, Action: "skipped", Message: "No changes to pull"}
		}
		if e.DryRun {
			return ItemResult{TaskID: local.ID, RemoteRef: issue.Ref, Action: "updated", Message: "dry run: no write issued"}
		}
		patch := patchFromFields(diffed)
		if changed {
			patch.Tags = nextTags
		}
		if _, err := e.Service.Update(local.ID, "sync", patch); err != nil {
			return ItemResult{TaskID: local.ID, RemoteRef: issue.Ref, Action: "failed", Message: err.Error()}
		}
		return ItemResult{TaskID: local.ID, RemoteRef: issue.Ref, Action: "updated"}
	}

	if e.DryRun {
		return ItemResult{RemoteRef: issue.Ref, Action: "created", Message: "dry run: no write issued"}
	}

	in := task.CreateInput{
		Project:     targetProject,
		Title:       fields["title"],
		Description: fields["description"],
		Status:      fields["status"],
		Priority:    fields["priority"],
		Type:        fields["type"],
		Assignee:    fields["assignee"],
		Reporter:    fields["reporter"],
		Tags:        tags,
	}
	switch e.Remote.Provider {
	case ProviderJira:
		in.References = []storage.Reference{{Jira: issue.Ref}}
	case ProviderGitHub:
		in.References = []storage.Reference{{GitHub: issue.Ref}}
	}
	created, err := e.Service.Create(in)
	if err != nil {
		return ItemResult{RemoteRef: issue.Ref, Action: "failed", Message: err.Error()}
	}
	return ItemResult{TaskID: created.ID, RemoteRef: issue.Ref, Action: "created"}
}

// findLocalByReference scans every task for one carrying ref. A full
// scan per issue is acceptable at the scale this core targets (single
// workspace, thousands of tasks); a reference index would be the first
// thing to add if that stops being true.
func (e *Engine) findLocalByReference(ref string) *storage.Task {
	found, err := e.Service.List(storage.Filter{})
	if err != nil {
		return nil
	}
	for _, f := range found {
		if providerRef(f.Task, e.Remote.Provider) == ref {
			t := f.Task
			return &t
		}
	}
	return nil
}

func patchFromFields(fields map[string]string) task.Patch {
	p := task.Patch{}
	for k, v := range fields {
		v := v
		switch k {
		case "title":
			p.Title = &v
		case "description":
			p.Description = &v
		case "status":
			p.Status = &v
		case "priority":
			p.Priority = &v
		case "type":
			p.Type = &v
		case "assignee":
			p.Assignee = &v
		}
	}
	return p
}
