// Package events implements the process-global event bus of spec.md
// §4.I: storage, config, scanner, and sync components publish typed
// events; CLI/HTTP layers subscribe to render progress or react to
// state changes. The Eventer/ToEvent pattern is kept from the
// teacher's original events package; the concrete event kinds below
// are specific to this domain.
package events

import "time"

// Type identifies an event's kind for subscription filtering.
type Type string

const (
	TypeTaskCreated   Type = "task_created"
	TypeTaskUpdated   Type = "task_updated"
	TypeTaskDeleted   Type = "task_deleted"
	TypeConfigUpdated Type = "config_updated"
	TypeSyncStarted   Type = "sync_started"
	TypeSyncProgress  Type = "sync_progress"
	TypeSyncCompleted Type = "sync_completed"
	TypeSyncFailed    Type = "sync_failed"
)

// Event is the wire shape every Eventer converts to before it reaches
// a subscriber.
type Event struct {
	Type      Type
	Timestamp time.Time
	Data      map[string]any
}

// Eventer converts a concrete, typed event into the bus's wire Event.
type Eventer interface {
	ToEvent() Event
}

// Handler receives published events.
type Handler func(Event)

// TaskCreatedEvent fires after a task file has been written.
type TaskCreatedEvent struct {
	TaskID    string
	Project   string
	Timestamp time.Time
}

func (e TaskCreatedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeTaskCreated,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"task_id": e.TaskID,
			"project": e.Project,
		},
	}
}

// TaskUpdatedEvent fires after a non-empty edit has been written.
type TaskUpdatedEvent struct {
	TaskID    string
	Timestamp time.Time
}

func (e TaskUpdatedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeTaskUpdated,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"task_id": e.TaskID,
		},
	}
}

// TaskDeletedEvent fires after a task file has been removed.
type TaskDeletedEvent struct {
	TaskID    string
	Timestamp time.Time
}

func (e TaskDeletedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeTaskDeleted,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"task_id": e.TaskID,
		},
	}
}

// ConfigUpdatedEvent fires after a config value is written to a layer.
type ConfigUpdatedEvent struct {
	Field     string
	Scope     string // "home", "global", or "project"
	Timestamp time.Time
}

func (e ConfigUpdatedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeConfigUpdated,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"field": e.Field,
			"scope": e.Scope,
		},
	}
}

// SyncStartedEvent fires when a push or pull run begins.
type SyncStartedEvent struct {
	Remote    string
	Direction string // "push" or "pull"
	Timestamp time.Time
}

func (e SyncStartedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeSyncStarted,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"remote":    e.Remote,
			"direction": e.Direction,
		},
	}
}

// SyncProgressEvent fires once per task processed during a run.
type SyncProgressEvent struct {
	Remote    string
	TaskID    string
	Action    string // "created", "updated", "skipped", "failed"
	Timestamp time.Time
}

func (e SyncProgressEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeSyncProgress,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"remote":  e.Remote,
			"task_id": e.TaskID,
			"action":  e.Action,
		},
	}
}

// SyncCompletedEvent fires when a run finishes without a fatal error.
type SyncCompletedEvent struct {
	Remote    string
	Direction string
	Created   int
	Updated   int
	Skipped   int
	Conflicts int // number of items that failed (the sync report's Failed count)
	Timestamp time.Time
}

func (e SyncCompletedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeSyncCompleted,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"remote":    e.Remote,
			"direction": e.Direction,
			"created":   e.Created,
			"updated":   e.Updated,
			"skipped":   e.Skipped,
			"conflicts": e.Conflicts,
		},
	}
}

// SyncFailedEvent fires when a run aborts on a fatal error.
type SyncFailedEvent struct {
	Remote    string
	Direction string
	Err       string
	Timestamp time.Time
}

func (e SyncFailedEvent) ToEvent() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return Event{
		Type:      TypeSyncFailed,
		Timestamp: e.Timestamp,
		Data: map[string]any{
			"remote":    e.Remote,
			"direction": e.Direction,
			"error":     e.Err,
		},
	}
}
