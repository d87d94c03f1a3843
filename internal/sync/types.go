// Package sync implements the Sync Engine of spec.md §4.H: push/pull
// orchestration between local tasks and a configured remote (Jira or
// GitHub), field mapping, pre-write diffing, and structured run
// reports. Grounded directly on the teacher's internal/provider/jira
// and internal/provider/github packages — their Client/doRequest shape,
// ResolveToken priority chains, and label/status mapping functions —
// adapted here to push/pull against a local storage.Engine instead of
// a pull-only cache refresh.
package sync

import "time"

// Provider identifies which remote issue tracker a RemoteConfig targets.
type Provider string

const (
	ProviderJira   Provider = "jira"
	ProviderGitHub Provider = "github"
)

// WhenEmpty controls what a mapped field does when its computed value
// is empty (spec.md §4.H "Mapping semantics").
type WhenEmpty string

const (
	WhenEmptySkip  WhenEmpty = "skip"
	WhenEmptyClear WhenEmpty = "clear"
)

// FieldMapping is one local_field -> remote_field mapping entry. Simple
// mappings set only RemoteField; detailed mappings additionally declare
// a value translation table and empty-value policy.
type FieldMapping struct {
	LocalField  string            `yaml:"local_field"`
	RemoteField string            `yaml:"remote_field"`
	Values      map[string]string `yaml:"values,omitempty"` // local -> remote, or remote -> local on pull (inverted lookup)
	WhenEmpty   WhenEmpty         `yaml:"when_empty,omitempty"`
	Default     string            `yaml:"default,omitempty"`
	Set         string            `yaml:"set,omitempty"` // constant value always pushed regardless of local value
	Add         []string          `yaml:"add,omitempty"`
}

// RemoteConfig is one entry of the `remotes` map in the home config,
// per spec.md §4.H.
type RemoteConfig struct {
	Name        string         `yaml:"-"`
	Provider    Provider       `yaml:"provider"`
	Project     string         `yaml:"project,omitempty"` // Jira project key
	Repo        string         `yaml:"repo,omitempty"`    // GitHub "owner/repo"
	Filter      string         `yaml:"filter,omitempty"`  // JQL or GitHub search query
	AuthProfile AuthProfile    `yaml:"auth_profile"`
	Mapping     []FieldMapping `yaml:"mapping,omitempty"`
}

// AuthProfile carries provider credentials, each value either a literal
// or an UPPER_SNAKE environment variable name (spec.md §4.H).
type AuthProfile struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Email   string `yaml:"email,omitempty"` // Jira
	Token   string `yaml:"token,omitempty"`
}

// Direction distinguishes a push (local -> remote) from a pull
// (remote -> local) run.
type Direction string

const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// ItemResult records the outcome of syncing one task or remote issue.
type ItemResult struct {
	TaskID    string `yaml:"task_id,omitempty"`
	RemoteRef string `yaml:"remote_ref,omitempty"`
	Action    string `yaml:"action"` // created, updated, skipped, failed
	Message   string `yaml:"message,omitempty"`
}

// Report is the structured outcome of one sync run, persisted under
// sync-reports/<remote>-<ts>.yml when requested.
type Report struct {
	Remote    string       `yaml:"remote"`
	Direction Direction    `yaml:"direction"`
	DryRun    bool         `yaml:"dry_run,omitempty"`
	Started   time.Time    `yaml:"started"`
	Finished  time.Time    `yaml:"finished"`
	Created   int          `yaml:"created"`
	Updated   int          `yaml:"updated"`
	Skipped   int          `yaml:"skipped"`
	Failed    int          `yaml:"failed"`
	Items     []ItemResult `yaml:"items,omitempty"`
}

func (r *Report) record(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Action {
	case "created":
		r.Created++
	case "updated":
		r.Updated++
	case "skipped":
		r.Skipped++
	case "failed":
		r.Failed++
	}
}
