package alert

import (
	"context"

	"github.com/CosmoTheDev/flowalert/models"
)

// Alerter is implemented by each alert backend. The execution engine calls
// one capability per lifecycle event; a backend that does not care about an
// event implements it as a no-op.
type Alerter interface {
	AlertOnSuccess(ctx context.Context, flow *models.ExecutableFlow) error
	AlertOnError(ctx context.Context, flow *models.ExecutableFlow, extraReasons ...string) error
	AlertOnFirstError(ctx context.Context, flow *models.ExecutableFlow) error
	AlertOnSla(ctx context.Context, sla models.SlaOption, message string) error
}

var (
	_ Alerter = (*JiraAlerter)(nil)
	_ Alerter = (*EmailAlerter)(nil)
	_ Alerter = (*WebhookAlerter)(nil)
)
