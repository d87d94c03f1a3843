package sync

import (
	"context"
	"testing"

	"github.com/lotar-dev/lotar/internal/events"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
)

type fakeClient struct {
	issues  map[string]*RemoteIssue
	nextNum int
	updates map[string]map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{issues: map[string]*RemoteIssue{}, updates: map[string]map[string]string{}}
}

func (c *fakeClient) Get(_ context.Context, ref string) (*RemoteIssue, error) {
	return c.issues[ref], nil
}

func (c *fakeClient) List(_ context.Context, _ string, page int) ([]*RemoteIssue, bool, error) {
	if page > 0 {
		return nil, false, nil
	}
	var out []*RemoteIssue
	for _, v := range c.issues {
		out = append(out, v)
	}
	return out, false, nil
}

func (c *fakeClient) Create(_ context.Context, fields map[string]string, labels []string) (*RemoteIssue, error) {
	c.nextNum++
	ref := "SERV-" + string(rune('0'+c.nextNum))
	issue := &RemoteIssue{Ref: ref, Fields: fields, Labels: labels}
	c.issues[ref] = issue
	return issue, nil
}

func (c *fakeClient) Update(_ context.Context, ref string, fields map[string]string, labels []string) error {
	c.updates[ref] = fields
	issue := c.issues[ref]
	for k, v := range fields {
		issue.Fields[k] = v
	}
	issue.Labels = labels
	return nil
}

func (c *fakeClient) SetStatus(_ context.Context, ref, status string) error {
	c.issues[ref].Fields["status"] = status
	return nil
}

func newTestServiceAndEngine(t *testing.T, client *fakeClient, remote RemoteConfig) (*task.Service, *Engine) {
	t.Helper()
	eng := storage.New(t.TempDir(), events.NewBus())
	svc := task.New(eng, eng.Root(), t.TempDir(), events.NewBus())
	return svc, New(client, remote, svc, events.NewBus())
}

func TestPushCreatesRemoteIssueForNoneState(t *testing.T) {
	client := newFakeClient()
	svc, e := newTestServiceAndEngine(t, client, RemoteConfig{Name: "jira-serv", Provider: ProviderJira, Project: "SERV"})

	created, err := svc.Create(task.CreateInput{Project: "SERV", Title: "Add retries"})
	if err != nil {
		t.Fatal(err)
	}

	report, err := e.Push(context.Background(), []*storage.Task{created})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("Created = %d, want 1", report.Created)
	}

	updated, err := svc.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.References) != 1 || updated.References[0].Jira == "" {
		t.Fatalf("expected a jira reference attached, got %+v", updated.References)
	}
}

func TestPushSkipsProviderOnlyMismatch(t *testing.T) {
	client := newFakeClient()
	svc, e := newTestServiceAndEngine(t, client, RemoteConfig{Name: "jira-serv", Provider: ProviderJira, Project: "SERV"})

	created, err := svc.Create(task.CreateInput{
		Project:    "SERV",
		Title:      "X",
		References: []storage.Reference{{Jira: "OTHER-9"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := e.Push(context.Background(), []*storage.Task{created})
	if err != nil {
		t.Fatal(err)
	}
	if report.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", report.Skipped)
	}
}

func TestPullCreatesLocalTaskForUnknownIssue(t *testing.T) {
	client := newFakeClient()
	client.issues["SERV-1"] = &RemoteIssue{
		Ref:    "SERV-1",
		Fields: map[string]string{"title": "Imported issue", "status": "Todo"},
	}
	_, e := newTestServiceAndEngine(t, client, RemoteConfig{Name: "jira-serv", Provider: ProviderJira, Project: "SERV"})

	report, err := e.Pull(context.Background(), "SERV")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("Created = %d, want 1", report.Created)
	}
}

func TestPushDryRunIssuesNoWrite(t *testing.T) {
	client := newFakeClient()
	svc, e := newTestServiceAndEngine(t, client, RemoteConfig{Name: "jira-serv", Provider: ProviderJira, Project: "SERV"})
	e.DryRun = true

	created, err := svc.Create(task.CreateInput{Project: "SERV", Title: "Add retries"})
	if err != nil {
		t.Fatal(err)
	}

	report, err := e.Push(context.Background(), []*storage.Task{created})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("Created = %d, want 1", report.Created)
	}
	if len(client.issues) != 0 {
		t.Fatalf("expected no remote issue to be created in dry run, got %d", len(client.issues))
	}

	unchanged, err := svc.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(unchanged.References) != 0 {
		t.Fatalf("expected no reference attached in dry run, got %+v", unchanged.References)
	}
}

func TestPullSkipsWhenNoFieldsChanged(t *testing.T) {
	client := newFakeClient()
	svc, e := newTestServiceAndEngine(t, client, RemoteConfig{Name: "jira-serv", Provider: ProviderJira, Project: "SERV"})

	created, err := svc.Create(task.CreateInput{
		Project:    "SERV",
		Title:      "Matches remote",
		Status:     "Todo",
		References: []storage.Reference{{Jira: "SERV-1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	client.issues["SERV-1"] = &RemoteIssue{
		Ref:    "SERV-1",
		Fields: map[string]string{"title": created.Title, "status": created.Status},
	}

	report, err := e.Pull(context.Background(), "SERV")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", report.Skipped)
	}
}
