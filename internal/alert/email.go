package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/CosmoTheDev/flowalert/internal/config"
	"github.com/CosmoTheDev/flowalert/models"
)

// EmailAlerter mails flow events over SMTP.
type EmailAlerter struct {
	cfg     config.EmailConfig
	product config.ProductConfig
	// send delivers a composed message; swapped out in tests.
	send func(ctx context.Context, recipients []string, msg []byte) error
}

// NewEmail creates an EmailAlerter from cfg. Host, sender and recipients are required.
func NewEmail(cfg config.EmailConfig, product config.ProductConfig) (*EmailAlerter, error) {
	switch {
	case cfg.SMTPHost == "":
		return nil, &config.MissingSettingError{Key: "email.smtp_host"}
	case cfg.From == "":
		return nil, &config.MissingSettingError{Key: "email.from"}
	case len(splitRecipients(cfg.To)) == 0:
		return nil, &config.MissingSettingError{Key: "email.to"}
	}
	if product.Name == "" {
		product.Name = config.DefaultProductName
	}
	e := &EmailAlerter{cfg: cfg, product: product}
	e.send = e.deliver
	return e, nil
}

func (e *EmailAlerter) AlertOnSuccess(ctx context.Context, flow *models.ExecutableFlow) error {
	if !e.cfg.OnSuccess {
		return nil
	}
	subject := fmt.Sprintf("Flow '%s' has succeeded on %s", flow.FlowID, e.product.Name)
	return e.mail(ctx, subject, e.flowBody(flow, "succeeded", nil))
}

func (e *EmailAlerter) AlertOnError(ctx context.Context, flow *models.ExecutableFlow, extraReasons ...string) error {
	subject := fmt.Sprintf("Flow '%s' has failed on %s", flow.FlowID, e.product.Name)
	return e.mail(ctx, subject, e.flowBody(flow, "failed", extraReasons))
}

func (e *EmailAlerter) AlertOnFirstError(ctx context.Context, flow *models.ExecutableFlow) error {
	subject := fmt.Sprintf("Flow '%s' has encountered a failure on %s", flow.FlowID, e.product.Name)
	return e.mail(ctx, subject, e.flowBody(flow, "encountered a failure and is finishing", nil))
}

func (e *EmailAlerter) AlertOnSla(ctx context.Context, sla models.SlaOption, message string) error {
	subject := fmt.Sprintf("SLA violation for flow '%s' on %s", sla.FlowID, e.product.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "SLA %s", sla.Type)
	if sla.JobID != "" {
		fmt.Fprintf(&b, " on job %s", sla.JobID)
	}
	if sla.Duration > 0 {
		fmt.Fprintf(&b, " (limit %s)", sla.Duration)
	}
	b.WriteString(" was violated.\n\n")
	b.WriteString(message)
	return e.mail(ctx, subject, b.String())
}

func (e *EmailAlerter) flowBody(flow *models.ExecutableFlow, outcome string, reasons []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Execution %d of flow '%s'", flow.ExecutionID, flow.FlowID)
	if flow.ProjectName != "" {
		fmt.Fprintf(&b, " in project %s", flow.ProjectName)
	}
	fmt.Fprintf(&b, " has %s.\n", outcome)
	if d := flow.Duration(); d > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", d)
	}
	if len(reasons) > 0 {
		b.WriteString("\nReasons:\n")
		for _, r := range reasons {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	if e.product.URL != "" {
		fmt.Fprintf(&b, "\n%s/executor?execid=%d\n", e.product.URL, flow.ExecutionID)
	}
	return b.String()
}

func (e *EmailAlerter) mail(ctx context.Context, subject, body string) error {
	to := splitRecipients(e.cfg.To)
	msg := fmt.Sprintf("Subject: %s\r\nFrom: %s\r\nTo: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		headerValue(subject), headerValue(e.cfg.From), headerValue(strings.Join(to, ", ")), strings.ReplaceAll(body, "\n", "\r\n"))
	if err := e.send(ctx, to, []byte(msg)); err != nil {
		return &TransportError{Alerter: "email", Err: err}
	}
	return nil
}

// deliver runs the SMTP conversation on a connection bound to ctx: the dial
// honours it, its deadline becomes the connection deadline, and cancelling
// it closes the connection.
func (e *EmailAlerter) deliver(ctx context.Context, to []string, msg []byte) (err error) {
	port := e.cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(e.cfg.SMTPHost, strconv.Itoa(port))

	var conn net.Conn
	if e.cfg.UseTLS {
		d := &tls.Dialer{Config: &tls.Config{ServerName: e.cfg.SMTPHost}} // #nosec G402 -- system defaults; ServerName set for SNI
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return errors.Wrap(err, "smtp dial")
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() {
		if err == nil {
			return
		}
		cerr := ctx.Err()
		if d, ok := ctx.Deadline(); cerr == nil && ok && !time.Now().Before(d) {
			cerr = context.DeadlineExceeded
		}
		if cerr != nil {
			err = errors.Wrap(cerr, err.Error())
		}
	}()

	client, err := smtp.NewClient(conn, e.cfg.SMTPHost)
	if err != nil {
		return errors.Wrap(err, "smtp greeting")
	}
	defer client.Close()

	if !e.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: e.cfg.SMTPHost}); err != nil { // #nosec G402 -- system defaults
				return errors.Wrap(err, "smtp starttls")
			}
		}
	}
	if e.cfg.Username != "" {
		auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.Wrapf(err, "smtp rcpt %s", rcpt)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// headerValue folds CR and LF to spaces so values cannot start new headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func splitRecipients(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
