package alert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

// Dispatcher fans flow events out to every registered alerter. A failing
// alerter is logged and skipped; it never stops the others.
type Dispatcher struct {
	alerters []namedAlerter
}

type namedAlerter struct {
	name string
	Alerter
}

// NewDispatcher builds the alerters listed in cfg.Alerters. A misconfigured
// alerter fails construction so nothing is dispatched half-configured.
func NewDispatcher(cfg *config.Config) (*Dispatcher, error) {
	d := &Dispatcher{}
	seen := make(map[string]bool, len(cfg.Alerters))
	for _, raw := range cfg.Alerters {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var (
			a   Alerter
			err error
		)
		switch name {
		case "jira":
			a, err = NewJira(cfg.Jira)
		case "email":
			a, err = NewEmail(cfg.Email, cfg.Product)
		case "webhook":
			a, err = NewWebhook(cfg.Webhook, cfg.Product, nil)
		default:
			err = errors.Errorf("unknown alerter %q", raw)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "alerter %s", name)
		}
		d.Register(name, a)
	}
	return d, nil
}

// Register adds a under name, replacing any alerter already registered there.
func (d *Dispatcher) Register(name string, a Alerter) {
	for i := range d.alerters {
		if d.alerters[i].name == name {
			d.alerters[i].Alerter = a
			return
		}
	}
	d.alerters = append(d.alerters, namedAlerter{name: name, Alerter: a})
}

// Get returns the alerter registered under name.
func (d *Dispatcher) Get(name string) (Alerter, bool) {
	for _, na := range d.alerters {
		if na.name == name {
			return na.Alerter, true
		}
	}
	return nil, false
}

// Names lists registered alerters in registration order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.alerters))
	for _, na := range d.alerters {
		names = append(names, na.name)
	}
	return names
}

// IsAnyConfigured returns true if at least one alerter is registered.
func (d *Dispatcher) IsAnyConfigured() bool {
	return len(d.alerters) > 0
}

func (d *Dispatcher) AlertOnSuccess(ctx context.Context, flow *models.ExecutableFlow) {
	d.each("success", flow.FlowID, func(a Alerter) error { return a.AlertOnSuccess(ctx, flow) })
}

func (d *Dispatcher) AlertOnError(ctx context.Context, flow *models.ExecutableFlow, extraReasons ...string) {
	d.each("error", flow.FlowID, func(a Alerter) error { return a.AlertOnError(ctx, flow, extraReasons...) })
}

func (d *Dispatcher) AlertOnFirstError(ctx context.Context, flow *models.ExecutableFlow) {
	d.each("first_error", flow.FlowID, func(a Alerter) error { return a.AlertOnFirstError(ctx, flow) })
}

func (d *Dispatcher) AlertOnSla(ctx context.Context, sla models.SlaOption, message string) {
	d.each("sla", sla.FlowID, func(a Alerter) error { return a.AlertOnSla(ctx, sla, message) })
}

func (d *Dispatcher) each(event, flowID string, fn func(Alerter) error) {
	for _, na := range d.alerters {
		if err := fn(na.Alerter); err != nil {
			slog.Warn("alert: alerter failed", "alerter", na.name, "event", event, "flow", flowID, "error", err)
		}
	}
}
