package scrape

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// adaptiveLimiter raises its rate 20% per success (up to 2x the initial
// rate) and halves it on 429 (down to a quarter).
type adaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	initial rate.Limit
	current rate.Limit
}

func newAdaptiveLimiter(r rate.Limit, burst int) *adaptiveLimiter {
	return &adaptiveLimiter{
		limiter: rate.NewLimiter(r, burst),
		initial: r,
		current: r,
	}
}

func (a *adaptiveLimiter) onSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.current * 1.2
	if next > a.initial*2 {
		next = a.initial * 2
	}
	a.current = next
	a.limiter.SetLimit(next)
}

func (a *adaptiveLimiter) onRateLimit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.current * 0.5
	if next < a.initial/4 {
		next = a.initial / 4
	}
	a.current = next
	a.limiter.SetLimit(next)
	return next
}

func (a *adaptiveLimiter) limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// HostLimiters paces outbound requests per host so parallel workers stay
// polite to any single site.
type HostLimiters struct {
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
	limiters map[string]*adaptiveLimiter
}

// NewHostLimiters allows rps requests per second to each host. rps <= 0
// returns nil, which disables pacing.
func NewHostLimiters(rps float64, burst int) *HostLimiters {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiters{
		perHost:  rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*adaptiveLimiter),
	}
}

func (h *HostLimiters) get(host string) *adaptiveLimiter {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = newAdaptiveLimiter(h.perHost, h.burst)
		h.limiters[host] = l
	}
	return l
}

// Wait blocks until host may be contacted again.
func (h *HostLimiters) Wait(ctx context.Context, host string) error {
	return h.get(host).limiter.Wait(ctx)
}

// Observe feeds a response status back into the host's rate.
func (h *HostLimiters) Observe(host string, status int) {
	l := h.get(host)
	switch {
	case status == http.StatusTooManyRequests:
		next := l.onRateLimit()
		zap.L().Warn("scrape: host rate limited, slowing down",
			zap.String("host", host),
			zap.Float64("rps", float64(next)),
		)
	case status < 400:
		l.onSuccess()
	}
}

// Limit returns the current rate for host.
func (h *HostLimiters) Limit(host string) rate.Limit {
	return h.get(host).limit()
}
