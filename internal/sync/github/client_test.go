package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gh "github.com/google/go-github/v67/github"
)

func setupMockClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := gh.NewClient(nil)
	serverURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = serverURL

	return &Client{gh: client, owner: "test-owner", repo: "test-repo"}
}

func TestGetReturnsMappedIssue(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "title": "Fix crash", "body": "stack trace here", "state": "open", "labels": [{"name": "bug"}]}`)
	})
	c := setupMockClient(t, handler)

	issue, err := c.Get(context.Background(), "#7")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if issue.Ref != "#7" {
		t.Errorf("Ref = %q, want #7", issue.Ref)
	}
	if issue.Fields["title"] != "Fix crash" {
		t.Errorf("title = %q", issue.Fields["title"])
	}
	if issue.Fields["status"] != "Todo" {
		t.Errorf("status = %q, want Todo", issue.Fields["status"])
	}
	if len(issue.Labels) != 1 || issue.Labels[0] != "bug" {
		t.Errorf("labels = %v", issue.Labels)
	}
}

func TestGetRejectsMalformedReference(t *testing.T) {
	c := setupMockClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if _, err := c.Get(context.Background(), "not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric reference")
	}
}

func TestCreatePostsTitleBodyAndLabels(t *testing.T) {
	var gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		fmt.Fprint(w, `{"number": 10, "title": "New", "state": "open"}`)
	})
	c := setupMockClient(t, handler)

	issue, err := c.Create(context.Background(), map[string]string{"title": "New", "description": "body text"}, []string{"feature"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.Ref != "#10" {
		t.Errorf("Ref = %q", issue.Ref)
	}
	if gotBody == "" {
		t.Fatal("expected a request body to have been sent")
	}
}

func TestSetStatusClosedForDoneClosedForCancelled(t *testing.T) {
	var gotState string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotState = string(buf)
		fmt.Fprint(w, `{"number": 3, "state": "closed"}`)
	})
	c := setupMockClient(t, handler)

	if err := c.SetStatus(context.Background(), "#3", "Done"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if gotState == "" {
		t.Fatal("expected a PATCH body")
	}
	if !strings.Contains(gotState, `"state":"closed"`) {
		t.Fatalf("Done: PATCH body = %q, want state closed", gotState)
	}

	if err := c.SetStatus(context.Background(), "#3", "Cancelled"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if !strings.Contains(gotState, `"state":"closed"`) {
		t.Fatalf("Cancelled: PATCH body = %q, want state closed", gotState)
	}
}

func TestMapGitHubState(t *testing.T) {
	open := &gh.Issue{State: ptr("open")}
	closed := &gh.Issue{State: ptr("closed")}
	if got := mapGitHubState(open); got != "Todo" {
		t.Errorf("open -> %q, want Todo", got)
	}
	if got := mapGitHubState(closed); got != "Done" {
		t.Errorf("closed -> %q, want Done", got)
	}
}
