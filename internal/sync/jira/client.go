// Package jira adapts the Jira REST API (v3 Cloud) to the sync.Client
// interface. Grounded directly on the teacher's
// internal/provider/jira/client.go: same endpoint shapes, same Basic
// Auth (email + API token) header construction, same Issue/Fields JSON
// layout. The hand-rolled retry-on-5xx loop the teacher didn't have is
// replaced here with go-retryablehttp's bounded exponential backoff
// over a go-cleanhttp base transport, per this port's domain-stack
// wiring (SPEC_FULL.md §5).
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
	"github.com/lotar-dev/lotar/internal/sync"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
)

// Client talks to a single Jira site's REST API.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	email   string
	token   string
}

// NewClient builds a Client against baseURL (e.g. "https://x.atlassian.net")
// authenticating as email with an API token.
func NewClient(baseURL, email, token string) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = defaultTimeout
	rc.RetryMax = maxRetries
	rc.Logger = nil
	// Only GETs are idempotent against a ticket tracker; mutating verbs
	// must not be silently retried into duplicate writes.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.Request != nil && resp.Request.Method != http.MethodGet {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &Client{
		http:    rc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		email:   email,
		token:   token,
	}
}

var _ sync.Client = (*Client)(nil)

func (c *Client) authHeader() string {
	auth := base64.StdEncoding.EncodeToString([]byte(c.email + ":" + c.token))
	return "Basic " + auth
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return lotarerrors.Wrap(lotarerrors.KindSerialization, "encode jira request", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+"/rest/api/3"+endpoint, reqBody)
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindRemoteRequest, "build jira request", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindRemoteRequest, "jira request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return lotarerrors.Wrap(lotarerrors.KindRemoteRequest, "read jira response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return lotarerrors.New(lotarerrors.KindRemoteAuth, fmt.Sprintf("jira auth failed: %s", string(respBody)))
	}
	if resp.StatusCode >= 300 {
		return lotarerrors.New(lotarerrors.KindRemoteRequest, fmt.Sprintf("jira %s %s: HTTP %d: %s", method, endpoint, resp.StatusCode, string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return lotarerrors.Wrap(lotarerrors.KindSerialization, "decode jira response", err)
		}
	}
	return nil
}

type issue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		Status      *named   `json:"status"`
		Priority    *named   `json:"priority"`
		Issuetype   *named   `json:"issuetype"`
		Assignee    *person  `json:"assignee"`
		Reporter    *person  `json:"reporter"`
		Labels      []string `json:"labels"`
		Updated     string   `json:"updated"`
	} `json:"fields"`
}

type named struct {
	Name string `json:"name"`
}

type person struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

func (i *issue) toRemoteIssue() *sync.RemoteIssue {
	fields := map[string]string{
		"title":       i.Fields.Summary,
		"description": i.Fields.Description,
	}
	if i.Fields.Status != nil {
		fields["status"] = i.Fields.Status.Name
	}
	if i.Fields.Priority != nil {
		fields["priority"] = i.Fields.Priority.Name
	}
	if i.Fields.Issuetype != nil {
		fields["type"] = i.Fields.Issuetype.Name
	}
	if i.Fields.Assignee != nil {
		fields["assignee"] = personIdentity(i.Fields.Assignee)
	}
	if i.Fields.Reporter != nil {
		fields["reporter"] = personIdentity(i.Fields.Reporter)
	}
	return &sync.RemoteIssue{
		Ref:         i.Key,
		Fields:      fields,
		Labels:      i.Fields.Labels,
		LastUpdated: i.Fields.Updated,
	}
}

func personIdentity(p *person) string {
	if p.EmailAddress != "" {
		return p.EmailAddress
	}
	return p.DisplayName
}

// Get fetches a single issue by key.
func (c *Client) Get(ctx context.Context, ref string) (*sync.RemoteIssue, error) {
	var resp issue
	if err := c.do(ctx, http.MethodGet, "/issue/"+ref, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toRemoteIssue(), nil
}

// List pages through a JQL search, 50 issues at a time.
func (c *Client) List(ctx context.Context, jql string, page int) ([]*sync.RemoteIssue, bool, error) {
	const pageSize = 50
	startAt := page * pageSize

	var resp struct {
		Issues     []issue `json:"issues"`
		Total      int     `json:"total"`
		StartAt    int     `json:"startAt"`
		MaxResults int     `json:"maxResults"`
	}
	endpoint := fmt.Sprintf("/search?jql=%s&startAt=%d&maxResults=%d", url.QueryEscape(jql), startAt, pageSize)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, false, err
	}

	issues := make([]*sync.RemoteIssue, 0, len(resp.Issues))
	for i := range resp.Issues {
		issues = append(issues, resp.Issues[i].toRemoteIssue())
	}
	hasMore := startAt+len(resp.Issues) < resp.Total
	return issues, hasMore, nil
}

// Create posts a new issue from the computed field payload.
func (c *Client) Create(ctx context.Context, fields map[string]string, labels []string) (*sync.RemoteIssue, error) {
	payload := map[string]any{
		"fields": buildFieldsPayload(fields, labels, true),
	}
	var resp struct {
		Key string `json:"key"`
	}
	if err := c.do(ctx, http.MethodPost, "/issue", payload, &resp); err != nil {
		return nil, err
	}
	return c.Get(ctx, resp.Key)
}

// Update pushes changed fields and labels to an existing issue; status
// is handled separately via SetStatus's transition call.
func (c *Client) Update(ctx context.Context, ref string, fields map[string]string, labels []string) error {
	if len(fields) == 0 && labels == nil {
		return nil
	}
	payload := map[string]any{
		"fields": buildFieldsPayload(fields, labels, false),
	}
	return c.do(ctx, http.MethodPut, "/issue/"+ref, payload, nil)
}

// SetStatus looks up the issue's available transitions and fires the
// one whose target name matches status (case-insensitive).
func (c *Client) SetStatus(ctx context.Context, ref, status string) error {
	var resp struct {
		Transitions []struct {
			ID string `json:"id"`
			To struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	if err := c.do(ctx, http.MethodGet, "/issue/"+ref+"/transitions", nil, &resp); err != nil {
		return err
	}
	for _, tr := range resp.Transitions {
		if strings.EqualFold(tr.To.Name, status) {
			payload := map[string]any{"transition": map[string]string{"id": tr.ID}}
			return c.do(ctx, http.MethodPost, "/issue/"+ref+"/transitions", payload, nil)
		}
	}
	return lotarerrors.New(lotarerrors.KindRemoteRequest, fmt.Sprintf("no transition to status %q available for %s", status, ref))
}

func buildFieldsPayload(fields map[string]string, labels []string, includeProject bool) map[string]any {
	out := map[string]any{}
	if v, ok := fields["title"]; ok {
		out["summary"] = v
	}
	if v, ok := fields["description"]; ok {
		out["description"] = v
	}
	if v, ok := fields["priority"]; ok {
		out["priority"] = map[string]string{"name": v}
	}
	if v, ok := fields["type"]; ok && includeProject {
		out["issuetype"] = map[string]string{"name": v}
	}
	if v, ok := fields["assignee"]; ok {
		out["assignee"] = map[string]string{"emailAddress": v}
	}
	if labels != nil {
		out["labels"] = labels
	}
	return out
}
