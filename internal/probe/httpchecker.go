package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/hamed0406/channelchecker/internal/domain"
)

const maxRedirects = 10

var errRedirectLoop = errors.New(domain.ReasonRedirectLoop)

// HTTPChecker is the transport stage: one GET, status 200 or bust.
type HTTPChecker struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	// Limiter paces requests across all workers; nil means unlimited.
	Limiter *rate.Limiter
	// Diagnose classifies the host's DNS after a transport error, within
	// what is left of Timeout. Nil skips it.
	Diagnose func(ctx context.Context, host string) DNSStatus
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errRedirectLoop
				}
				return nil
			},
		},
		Timeout:  timeout,
		Diagnose: CheckDNS,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) domain.Result {
	start := time.Now()
	out := h.check(ctx, target)
	out.Duration = time.Since(start)
	return out
}

func (h *HTTPChecker) check(ctx context.Context, target string) domain.Result {
	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx); err != nil {
			return domain.TimedOut("waiting for request slot: " + err.Error())
		}
	}

	cctx := ctx
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Failed(domain.ReasonTransportError, err.Error())
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return h.classify(cctx, target, err)
	}
	// Live streams never end; the status line is all we need.
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		r := domain.Passed()
		r.StatusCode = resp.StatusCode
		return r
	}
	r := domain.Failed(statusLabel(resp.StatusCode), "")
	r.StatusCode = resp.StatusCode
	return r
}

func (h *HTTPChecker) classify(cctx context.Context, target string, err error) domain.Result {
	if errors.Is(err, errRedirectLoop) {
		return domain.Failed(domain.ReasonRedirectLoop, fmt.Sprintf("more than %d redirects", maxRedirects))
	}
	var ne net.Error
	if cctx.Err() != nil || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.TimedOut(fmt.Sprintf("no response within %s", h.Timeout))
	}

	detail := err.Error()
	// The lookup shares the stage budget, so it cannot stretch the stage past Timeout.
	if h.Diagnose != nil && cctx.Err() == nil {
		if host := extractHost(target); host != "" {
			dns := h.Diagnose(cctx, host)
			detail = fmt.Sprintf("%s dns=%s", detail, dns.Class)
		}
	}
	return domain.Failed(domain.ReasonTransportError, truncate(detail))
}

func statusLabel(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}

// extractHost pulls the hostname from a URL string
func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
