package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

// JiraAlerter opens a Jira issue for every failed flow. Success, first-error
// and SLA events are ignored.
type JiraAlerter struct {
	cfg    config.JiraConfig
	client *resty.Client
}

// JiraOption customises a JiraAlerter.
type JiraOption func(*JiraAlerter)

// WithJiraHTTPClient sends requests through hc instead of a default client.
func WithJiraHTTPClient(hc *http.Client) JiraOption {
	return func(j *JiraAlerter) { j.client = newRESTClient(hc) }
}

// NewJira validates cfg and returns a ready alerter. Any missing setting is
// reported as a *config.MissingSettingError before anything is sent.
func NewJira(cfg config.JiraConfig, opts ...JiraOption) (*JiraAlerter, error) {
	if cfg.ProductName == "" {
		cfg.ProductName = config.DefaultProductName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	j := &JiraAlerter{cfg: cfg}
	for _, opt := range opts {
		opt(j)
	}
	if j.client == nil {
		j.client = newRESTClient(nil)
	}
	return j, nil
}

type jiraIssue struct {
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Project     jiraProject   `json:"project"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   jiraIssueType `json:"issuetype"`
	Labels      []string      `json:"labels"`
}

type jiraProject struct {
	Key string `json:"key"`
}

type jiraIssueType struct {
	ID string `json:"id"`
}

func (j *JiraAlerter) summary(flow *models.ExecutableFlow) string {
	return fmt.Sprintf("%s Flow '%s' has failed on %s", j.cfg.SummaryPrefix, flow.FlowID, j.cfg.ProductName)
}

func (j *JiraAlerter) description(flow *models.ExecutableFlow) string {
	return fmt.Sprintf("%s/executor?execid=%d", j.cfg.ProductURL, flow.ExecutionID)
}

func (j *JiraAlerter) buildIssue(flow *models.ExecutableFlow) jiraIssue {
	return jiraIssue{Fields: jiraFields{
		Project:     jiraProject{Key: j.cfg.ProjectKey},
		Summary:     j.summary(flow),
		Description: j.description(flow),
		IssueType:   jiraIssueType{ID: j.cfg.IssueTypeID},
		Labels:      []string{j.cfg.IssueLabel},
	}}
}

// endpoint assembles scheme://host/path and checks that it parses back.
func (j *JiraAlerter) endpoint() (string, error) {
	u := url.URL{Scheme: j.cfg.Scheme, Host: j.cfg.Host, Path: j.cfg.Path}
	raw := u.String()
	if _, err := url.ParseRequestURI(raw); err != nil {
		return "", err
	}
	return raw, nil
}

func (j *JiraAlerter) AlertOnSuccess(context.Context, *models.ExecutableFlow) error { return nil }

func (j *JiraAlerter) AlertOnFirstError(context.Context, *models.ExecutableFlow) error { return nil }

func (j *JiraAlerter) AlertOnSla(context.Context, models.SlaOption, string) error { return nil }

// AlertOnError makes a single POST to the issue endpoint. extraReasons are
// logged but kept out of the ticket.
func (j *JiraAlerter) AlertOnError(ctx context.Context, flow *models.ExecutableFlow, extraReasons ...string) error {
	content, err := json.Marshal(j.buildIssue(flow))
	if err != nil {
		return errors.Wrap(err, "jira: encode issue")
	}
	slog.Info("jira: creating issue", "flow", flow.FlowID, "execid", flow.ExecutionID, "content", string(content))
	if len(extraReasons) > 0 {
		slog.Debug("jira: extra reasons not attached to issue", "flow", flow.FlowID, "reasons", extraReasons)
	}

	endpoint, err := j.endpoint()
	if err != nil {
		return &TransportError{Alerter: "jira", Err: err}
	}

	res, err := j.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(j.cfg.User, j.cfg.Password).
		SetBody(content).
		Post(endpoint)
	if err != nil {
		return &TransportError{Alerter: "jira", Err: err}
	}

	body := string(res.Body())
	if res.StatusCode() >= 300 {
		slog.Error("jira: issue creation rejected", "flow", flow.FlowID, "status", res.StatusCode())
		return &IssueCreationError{StatusCode: res.StatusCode(), Body: body}
	}

	slog.Info("jira: issue created", "flow", flow.FlowID, "status", res.StatusCode(), "responseBody", body)
	return nil
}
