package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "bot@example.com", "token123")
}

func TestGetReturnsMappedIssue(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got == "" {
			t.Error("expected an Authorization header")
		}
		fmt.Fprint(w, `{
			"key": "SERV-5",
			"fields": {
				"summary": "Add retries",
				"description": "flaky client",
				"status": {"name": "In Progress"},
				"priority": {"name": "High"},
				"issuetype": {"name": "Bug"},
				"labels": ["backend"]
			}
		}`)
	}))

	issue, err := c.Get(context.Background(), "SERV-5")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if issue.Ref != "SERV-5" {
		t.Errorf("Ref = %q", issue.Ref)
	}
	if issue.Fields["status"] != "In Progress" {
		t.Errorf("status = %q", issue.Fields["status"])
	}
	if len(issue.Labels) != 1 || issue.Labels[0] != "backend" {
		t.Errorf("labels = %v", issue.Labels)
	}
}

func TestGetSurfacesAuthFailureAsRemoteAuthKind(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errorMessages": ["not authorized"]}`)
	}))

	if _, err := c.Get(context.Background(), "SERV-5"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestListPagesUntilTotalExhausted(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"issues": [{"key": "SERV-1", "fields": {"summary": "one"}}], "total": 2, "startAt": 0, "maxResults": 1}`)
	}))

	issues, hasMore, err := c.List(context.Background(), "project = SERV", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("len(issues) = %d, want 1", len(issues))
	}
	if !hasMore {
		t.Fatal("expected hasMore=true since total > returned count")
	}
}

func TestSetStatusFiresMatchingTransition(t *testing.T) {
	var posted string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `{"transitions": [{"id": "31", "to": {"name": "Done"}}, {"id": "21", "to": {"name": "In Progress"}}]}`)
		case r.Method == http.MethodPost:
			posted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	if err := c.SetStatus(context.Background(), "SERV-5", "done"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if posted == "" {
		t.Fatal("expected a transition POST")
	}
}

func TestSetStatusErrorsWhenNoMatchingTransition(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transitions": [{"id": "21", "to": {"name": "In Progress"}}]}`)
	}))

	if err := c.SetStatus(context.Background(), "SERV-5", "Archived"); err == nil {
		t.Fatal("expected an error for an unreachable status")
	}
}
