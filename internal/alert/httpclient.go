package alert

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const userAgent = "flowalert"

// newRESTClient returns a resty client that makes exactly one attempt per
// request and hands 3xx responses back to the caller instead of following
// them. A nil hc gets resty's default transport.
func newRESTClient(hc *http.Client) *resty.Client {
	var c *resty.Client
	if hc != nil {
		c = resty.NewWithClient(hc)
	} else {
		c = resty.New()
	}
	return c.
		SetRetryCount(0).
		SetRedirectPolicy(noFollow).
		SetHeader("User-Agent", userAgent).
		SetLogger(slogAdapter{})
}

var noFollow = resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
})

// slogAdapter routes resty's own warnings through slog.
type slogAdapter struct{}

func (slogAdapter) Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (slogAdapter) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (slogAdapter) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
