// Package github adapts the GitHub Issues API to the sync.Client
// interface. Grounded on the teacher's internal/provider/github/client.go:
// same oauth2.StaticTokenSource-backed go-github/v67 wiring and the same
// owner/repo-scoped Client shape. Where the teacher hand-rolls individual
// GetIssue/ListComments-style methods per concern, this adapter collapses
// everything through go-github's Issues service to satisfy the five
// provider-neutral verbs the sync engine calls.
package github

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/sync"
)

func ptr[T any](v T) *T { return &v }

// Client wraps a go-github client scoped to one owner/repo.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient builds a Client authenticated with a personal access token.
func NewClient(token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{gh: github.NewClient(tc), owner: owner, repo: repo}
}

var _ sync.Client = (*Client)(nil)

func wrapGitHubErr(err error) error {
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		switch ghErr.Response.StatusCode {
		case 401, 403:
			return lotarerrors.New(lotarerrors.KindRemoteAuth, "github auth failed: "+ghErr.Message)
		case 404:
			return lotarerrors.New(lotarerrors.KindRemoteRequest, "github issue not found: "+ghErr.Message)
		}
	}
	return lotarerrors.Wrap(lotarerrors.KindRemoteRequest, "github request failed", err)
}

func issueToRemote(issue *github.Issue) *sync.RemoteIssue {
	fields := map[string]string{
		"title": issue.GetTitle(),
		"body":  issue.GetBody(),
	}
	fields["description"] = issue.GetBody()
	fields["status"] = mapGitHubState(issue)
	if issue.Assignee != nil {
		fields["assignee"] = issue.Assignee.GetLogin()
	}
	if issue.User != nil {
		fields["reporter"] = issue.User.GetLogin()
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	ref := fmt.Sprintf("#%d", issue.GetNumber())
	return &sync.RemoteIssue{
		Ref:         ref,
		Fields:      fields,
		Labels:      labels,
		LastUpdated: issue.GetUpdatedAt().String(),
	}
}

// mapGitHubState folds GitHub's two-state (open/closed) model onto the
// two statuses a remote issue can unambiguously report; anything finer
// (Todo vs. In Progress) lives only in labels on the GitHub side.
func mapGitHubState(issue *github.Issue) string {
	switch issue.GetState() {
	case "open":
		return "Todo"
	case "closed":
		return "Done"
	default:
		return issue.GetState()
	}
}

func issueNumber(ref string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return 0, lotarerrors.New(lotarerrors.KindInvalidTaskID, "invalid github issue reference: "+ref)
	}
	return n, nil
}

// Get fetches a single issue by its "#N" reference.
func (c *Client) Get(ctx context.Context, ref string) (*sync.RemoteIssue, error) {
	n, err := issueNumber(ref)
	if err != nil {
		return nil, err
	}
	issue, _, err := c.gh.Issues.Get(ctx, c.owner, c.repo, n)
	if err != nil {
		return nil, wrapGitHubErr(err)
	}
	return issueToRemote(issue), nil
}

// List pages through the repo's issues (state=all), filter is an
// optional label filter expression.
func (c *Client) List(ctx context.Context, filter string, page int) ([]*sync.RemoteIssue, bool, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{Page: page + 1, PerPage: 50},
	}
	if filter != "" {
		opts.Labels = strings.Split(filter, ",")
	}

	issues, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, false, wrapGitHubErr(err)
	}

	out := make([]*sync.RemoteIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		out = append(out, issueToRemote(issue))
	}
	return out, resp.NextPage != 0, nil
}

// Create opens a new issue from the computed field payload.
func (c *Client) Create(ctx context.Context, fields map[string]string, labels []string) (*sync.RemoteIssue, error) {
	req := &github.IssueRequest{
		Title:  ptr(fields["title"]),
		Body:   ptr(fields["description"]),
		Labels: &labels,
	}
	if assignee := fields["assignee"]; assignee != "" {
		req.Assignee = ptr(assignee)
	}
	issue, _, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, wrapGitHubErr(err)
	}
	return issueToRemote(issue), nil
}

// Update edits an existing issue's title/body/assignee/labels; status
// transitions go through SetStatus instead, since GitHub's state model
// is open/closed rather than an arbitrary label.
func (c *Client) Update(ctx context.Context, ref string, fields map[string]string, labels []string) error {
	n, err := issueNumber(ref)
	if err != nil {
		return err
	}
	req := &github.IssueRequest{}
	if title, ok := fields["title"]; ok {
		req.Title = ptr(title)
	}
	if desc, ok := fields["description"]; ok {
		req.Body = ptr(desc)
	}
	if assignee, ok := fields["assignee"]; ok {
		req.Assignee = ptr(assignee)
	}
	if labels != nil {
		req.Labels = &labels
	}
	_, _, err = c.gh.Issues.Edit(ctx, c.owner, c.repo, n, req)
	return wrapGitHubErr(err)
}

// SetStatus maps a lotar status onto GitHub's open/closed issue state.
func (c *Client) SetStatus(ctx context.Context, ref, status string) error {
	n, err := issueNumber(ref)
	if err != nil {
		return err
	}
	req := &github.IssueRequest{}
	switch strings.ToLower(status) {
	case "done", "closed", "resolved", "cancelled", "wontfix":
		req.State = ptr("closed")
	default:
		req.State = ptr("open")
	}
	_, _, err = c.gh.Issues.Edit(ctx, c.owner, c.repo, n, req)
	return wrapGitHubErr(err)
}
