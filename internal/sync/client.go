package sync

import "context"

// RemoteIssue is the provider-neutral shape both the Jira and GitHub
// adapters normalize to/from, so the engine's mapping and diff logic
// never touches provider-specific JSON.
type RemoteIssue struct {
	Ref         string // "KEY-N" (Jira) or "owner/repo#N" (GitHub)
	Fields      map[string]string
	Labels      []string
	LastUpdated string
}

// Client is the provider-neutral remote API surface the sync engine
// drives. Jira and GitHub each implement it, grounded respectively on
// the teacher's provider/jira.Client and provider/github.Client method
// sets, collapsed to the subset push/pull actually needs.
type Client interface {
	Get(ctx context.Context, ref string) (*RemoteIssue, error)
	List(ctx context.Context, filter string, page int) (issues []*RemoteIssue, hasMore bool, err error)
	Create(ctx context.Context, fields map[string]string, labels []string) (*RemoteIssue, error)
	Update(ctx context.Context, ref string, fields map[string]string, labels []string) error
	SetStatus(ctx context.Context, ref string, status string) error
}
