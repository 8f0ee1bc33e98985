package alert

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

// SignatureHeader carries "sha256=<hex hmac of body>" when a secret is set.
const SignatureHeader = "X-Flowalert-Signature"

// Webhook event types.
const (
	EventFlowSucceeded  = "flow_succeeded"
	EventFlowFailed     = "flow_failed"
	EventFlowFirstError = "flow_first_error"
	EventSlaViolation   = "sla_violation"
)

// WebhookAlerter posts every flow event as JSON to a generic HTTP endpoint
// with optional HMAC-SHA256 signing.
type WebhookAlerter struct {
	cfg     config.WebhookConfig
	product config.ProductConfig
	client  *resty.Client
	now     func() time.Time
}

// NewWebhook creates a WebhookAlerter from cfg. A nil hc uses a default client.
func NewWebhook(cfg config.WebhookConfig, product config.ProductConfig, hc *http.Client) (*WebhookAlerter, error) {
	if cfg.URL == "" {
		return nil, &config.MissingSettingError{Key: "webhook.url"}
	}
	if product.Name == "" {
		product.Name = config.DefaultProductName
	}
	return &WebhookAlerter{cfg: cfg, product: product, client: newRESTClient(hc), now: time.Now}, nil
}

type webhookPayload struct {
	Type        string            `json:"type"`
	Product     string            `json:"product"`
	FlowID      string            `json:"flow_id"`
	ExecutionID int               `json:"execution_id,omitempty"`
	Project     string            `json:"project,omitempty"`
	URL         string            `json:"url,omitempty"`
	Reasons     []string          `json:"reasons,omitempty"`
	Sla         *models.SlaOption `json:"sla,omitempty"`
	Message     string            `json:"message,omitempty"`
	Timestamp   string            `json:"ts"`
}

func (w *WebhookAlerter) flowPayload(eventType string, flow *models.ExecutableFlow) webhookPayload {
	p := webhookPayload{
		Type:        eventType,
		Product:     w.product.Name,
		FlowID:      flow.FlowID,
		ExecutionID: flow.ExecutionID,
		Project:     flow.ProjectName,
	}
	if w.product.URL != "" {
		p.URL = w.product.URL + "/executor?execid=" + strconv.Itoa(flow.ExecutionID)
	}
	return p
}

func (w *WebhookAlerter) AlertOnSuccess(ctx context.Context, flow *models.ExecutableFlow) error {
	return w.post(ctx, w.flowPayload(EventFlowSucceeded, flow))
}

func (w *WebhookAlerter) AlertOnError(ctx context.Context, flow *models.ExecutableFlow, extraReasons ...string) error {
	p := w.flowPayload(EventFlowFailed, flow)
	p.Reasons = extraReasons
	return w.post(ctx, p)
}

func (w *WebhookAlerter) AlertOnFirstError(ctx context.Context, flow *models.ExecutableFlow) error {
	return w.post(ctx, w.flowPayload(EventFlowFirstError, flow))
}

func (w *WebhookAlerter) AlertOnSla(ctx context.Context, sla models.SlaOption, message string) error {
	return w.post(ctx, webhookPayload{
		Type:    EventSlaViolation,
		Product: w.product.Name,
		FlowID:  sla.FlowID,
		Sla:     &sla,
		Message: message,
	})
}

func (w *WebhookAlerter) post(ctx context.Context, p webhookPayload) error {
	p.Timestamp = w.now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "webhook: encode payload")
	}

	req := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(b)
	if w.cfg.Secret != "" {
		req.SetHeader(SignatureHeader, "sha256="+Sign(w.cfg.Secret, b))
	}

	res, err := req.Post(w.cfg.URL)
	if err != nil {
		return &TransportError{Alerter: "webhook", Err: err}
	}
	if res.StatusCode() >= 300 {
		return &ResponseError{Alerter: "webhook", StatusCode: res.StatusCode(), Body: string(res.Body())}
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
