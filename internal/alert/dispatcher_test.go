package alert

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

type fakeAlerter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeAlerter) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAlerter) AlertOnSuccess(context.Context, *models.ExecutableFlow) error {
	return f.record("success")
}

func (f *fakeAlerter) AlertOnError(_ context.Context, _ *models.ExecutableFlow, reasons ...string) error {
	return f.record("error")
}

func (f *fakeAlerter) AlertOnFirstError(context.Context, *models.ExecutableFlow) error {
	return f.record("first_error")
}

func (f *fakeAlerter) AlertOnSla(context.Context, models.SlaOption, string) error {
	return f.record("sla")
}

func TestDispatcherContinuesPastFailures(t *testing.T) {
	broken := &fakeAlerter{err: errors.New("boom")}
	healthy := &fakeAlerter{}
	d := &Dispatcher{}
	d.Register("broken", broken)
	d.Register("healthy", healthy)
	ctx := context.Background()

	d.AlertOnError(ctx, failedFlow, "why")
	d.AlertOnSuccess(ctx, failedFlow)
	d.AlertOnFirstError(ctx, failedFlow)
	d.AlertOnSla(ctx, models.SlaOption{FlowID: "etl_daily"}, "late")

	want := []string{"error", "success", "first_error", "sla"}
	assert.Equal(t, want, broken.calls)
	assert.Equal(t, want, healthy.calls)
}

func TestDispatcherRegisterReplaces(t *testing.T) {
	d := &Dispatcher{}
	assert.False(t, d.IsAnyConfigured())

	first, second := &fakeAlerter{}, &fakeAlerter{}
	d.Register("jira", first)
	d.Register("jira", second)

	assert.Equal(t, []string{"jira"}, d.Names())
	got, ok := d.Get("jira")
	require.True(t, ok)
	assert.Same(t, second, got)
	_, ok = d.Get("email")
	assert.False(t, ok)
}

func TestNewDispatcherFromConfig(t *testing.T) {
	cfg := &config.Config{
		Product:  config.ProductConfig{Name: "azkaban", URL: "http://ui"},
		Jira:     testJiraConfig(),
		Webhook:  config.WebhookConfig{URL: "http://hooks.example.com"},
		Alerters: []string{"jira", " Webhook ", "jira", ""},
	}

	d, err := NewDispatcher(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"jira", "webhook"}, d.Names())

	a, ok := d.Get("jira")
	require.True(t, ok)
	assert.IsType(t, &JiraAlerter{}, a)
}

func TestNewDispatcherFailsFast(t *testing.T) {
	cfg := &config.Config{Jira: testJiraConfig(), Alerters: []string{"jira", "email"}}
	_, err := NewDispatcher(cfg)
	var missing *config.MissingSettingError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "email.smtp_host", missing.Key)

	cfg.Alerters = []string{"pager"}
	_, err = NewDispatcher(cfg)
	assert.ErrorContains(t, err, `unknown alerter "pager"`)
}
