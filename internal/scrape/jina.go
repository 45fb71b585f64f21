package scrape

import (
	"context"
	"strings"

	"github.com/sells-group/contact-finder/internal/metrics"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/jina"
)

// challengeSignatures mark reader output that is a bot wall, not content.
var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// JinaFetcher renders pages through the Jina Reader API. It is the
// fallback for sites that block direct requests.
type JinaFetcher struct {
	client  jina.Client
	breaker *resilience.CircuitBreaker
}

// NewJinaFetcher wraps a Jina client behind a circuit breaker so an outage
// stops costing a request per page.
func NewJinaFetcher(client jina.Client, breaker *resilience.CircuitBreaker) *JinaFetcher {
	return &JinaFetcher{client: client, breaker: breaker}
}

func (j *JinaFetcher) Name() string { return "jina_reader" }

// Supports is false while the breaker is open.
func (j *JinaFetcher) Supports(_ string) bool {
	return j.breaker.State() != resilience.CircuitOpen
}

// Fetch reads targetURL via Jina. The page has Text (markdown) but no HTML.
func (j *JinaFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	resp, err := resilience.ExecuteVal(ctx, j.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		return j.client.Read(ctx, targetURL)
	})
	if err != nil {
		metrics.ObserveFetch(j.Name(), string(FailNetwork))
		return nil, &FetchError{URL: targetURL, Fetcher: j.Name(), Kind: FailNetwork, Err: err}
	}

	if kind, ok := readerFailure(resp); !ok {
		metrics.ObserveFetch(j.Name(), string(kind))
		return nil, &FetchError{URL: targetURL, Fetcher: j.Name(), Kind: kind, StatusCode: resp.Code}
	}

	metrics.ObserveFetch(j.Name(), "ok")
	finalURL := resp.Data.URL
	if finalURL == "" {
		finalURL = targetURL
	}
	return &Page{
		URL:        targetURL,
		FinalURL:   finalURL,
		StatusCode: 200,
		Title:      resp.Data.Title,
		Text:       strings.TrimSpace(resp.Data.Content),
		Source:     j.Name(),
	}, nil
}

// readerFailure classifies a reader response; ok is true when it is usable.
func readerFailure(resp *jina.ReadResponse) (FailureKind, bool) {
	if resp == nil {
		return FailEmpty, false
	}
	if resp.Code != 0 && resp.Code != 200 {
		return FailStatus, false
	}
	content := strings.TrimSpace(resp.Data.Content)
	if content == "" {
		return FailEmpty, false
	}
	if len(content) < 1000 {
		lower := strings.ToLower(content)
		for _, sig := range challengeSignatures {
			if strings.Contains(lower, sig) {
				return FailBlocked, false
			}
		}
	}
	return "", true
}
