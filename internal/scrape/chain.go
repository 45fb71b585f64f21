package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries fetchers in priority order. It only falls through to the next
// fetcher when a site blocked the previous one; a 404 or a dead host is an
// answer, not something a different fetcher can fix.
type Chain struct {
	matcher  *PathMatcher
	fetchers []Fetcher
}

// NewChain creates a Chain. A nil matcher excludes nothing.
func NewChain(matcher *PathMatcher, fetchers ...Fetcher) *Chain {
	return &Chain{matcher: matcher, fetchers: fetchers}
}

func (c *Chain) Name() string           { return "chain" }
func (c *Chain) Supports(_ string) bool { return true }

// Fetch returns the first successful page.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if c.matcher.IsExcluded(targetURL) {
		return nil, &FetchError{URL: targetURL, Fetcher: c.Name(), Kind: FailExcluded}
	}

	var lastErr error
	for _, f := range c.fetchers {
		if !f.Supports(targetURL) {
			continue
		}
		page, err := f.Fetch(ctx, targetURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !eris.Is(err, ErrBlocked) {
			return nil, err
		}
		zap.L().Debug("scrape: blocked, trying next fetcher",
			zap.String("fetcher", f.Name()),
			zap.String("url", targetURL),
		)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &FetchError{URL: targetURL, Fetcher: c.Name(), Kind: FailExcluded,
		Err: eris.New("scrape: no fetcher supports url")}
}
