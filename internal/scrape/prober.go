package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/metrics"
	"github.com/sells-group/contact-finder/internal/model"
)

// ErrNoWebsite is returned when no candidate domain answered.
var ErrNoWebsite = eris.New("scrape: no website found")

const defaultProbeTimeout = 4 * time.Second

// ProbeOptions configures an HTTPProber.
type ProbeOptions struct {
	// Timeout bounds each request; values above 5s are clamped.
	Timeout   time.Duration
	UserAgent string
	// AcceptForbidden treats 403 as alive: many sites refuse HEAD from
	// unknown clients yet serve pages fine.
	AcceptForbidden bool
}

// HTTPProber checks candidate domains for liveness without downloading
// pages. Redirects are not followed so 301/302 count as alive.
type HTTPProber struct {
	client *http.Client
	opts   ProbeOptions
}

// NewHTTPProber creates an HTTPProber.
func NewHTTPProber(opts ProbeOptions) *HTTPProber {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProbeTimeout
	}
	if opts.Timeout > 5*time.Second {
		opts.Timeout = 5 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &HTTPProber{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: opts.Timeout}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
				DisableKeepAlives:   true,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// FindWebsite probes candidates in rank order, https before http, and
// returns the first live site. It returns ErrNoWebsite when none answers.
func (p *HTTPProber) FindWebsite(ctx context.Context, candidates []model.DomainCandidate) (*model.ProbeResult, error) {
	for _, c := range candidates {
		for _, proto := range []model.Protocol{model.ProtocolHTTPS, model.ProtocolHTTP} {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "scrape: probe canceled")
			}
			target := string(proto) + "://" + c.Domain
			status, err := p.Probe(ctx, target)
			if err != nil {
				zap.L().Debug("scrape: probe failed",
					zap.String("url", target),
					zap.Error(err),
				)
				continue
			}
			if !p.accepts(status) {
				continue
			}
			metrics.ObserveProbe(true)
			return &model.ProbeResult{
				URL:        target,
				Domain:     c.Domain,
				Reachable:  true,
				Protocol:   proto,
				StatusCode: status,
			}, nil
		}
	}
	metrics.ObserveProbe(false)
	return nil, ErrNoWebsite
}

// Probe issues a HEAD request, retrying once with GET when the server does
// not implement HEAD. It returns the status code.
func (p *HTTPProber) Probe(ctx context.Context, target string) (int, error) {
	status, err := p.do(ctx, http.MethodHead, target)
	if err != nil {
		return 0, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		return p.do(ctx, http.MethodGet, target)
	}
	return status, nil
}

func (p *HTTPProber) do(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, eris.Wrap(err, "scrape: build probe request")
	}
	setBrowserHeaders(req, p.opts.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "scrape: probe")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (p *HTTPProber) accepts(status int) bool {
	switch status {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	case http.StatusForbidden:
		return p.opts.AcceptForbidden
	}
	return false
}
