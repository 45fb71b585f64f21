package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/metrics"
)

// DefaultUserAgent is a desktop Chrome string; many small-business hosts
// refuse obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	defaultFetchTimeout = 5 * time.Second
	defaultMaxBody      = 512 * 1024
	maxRedirects        = 10
)

// LocalOptions configures a LocalFetcher.
type LocalOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// Limiters paces requests per host; nil disables pacing.
	Limiters *HostLimiters
}

// LocalFetcher fetches pages directly with net/http and parses them with
// goquery. No cookies persist between requests.
type LocalFetcher struct {
	client *http.Client
	opts   LocalOptions
}

// NewLocalFetcher creates a LocalFetcher, filling zero options with defaults.
func NewLocalFetcher(opts LocalOptions) *LocalFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	return &LocalFetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (l *LocalFetcher) Name() string           { return "local_http" }
func (l *LocalFetcher) Supports(_ string) bool { return true }

// Fetch GETs targetURL following redirects. Every failure comes back as a
// *FetchError.
func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	page, err := l.fetch(ctx, targetURL)
	if err != nil {
		metrics.ObserveFetch(l.Name(), string(err.Kind))
		zap.L().Debug("scrape: fetch failed",
			zap.String("url", targetURL),
			zap.String("kind", string(err.Kind)),
			zap.Int("status", err.StatusCode),
			zap.Error(err.Err),
		)
		return nil, err
	}
	metrics.ObserveFetch(l.Name(), "ok")
	return page, nil
}

func (l *LocalFetcher) fetch(ctx context.Context, targetURL string) (*Page, *FetchError) {
	fail := func(kind FailureKind, err error) *FetchError {
		return &FetchError{URL: targetURL, Fetcher: l.Name(), Kind: kind, Err: err}
	}

	u, err := url.Parse(targetURL)
	if err != nil || u.Host == "" {
		return nil, fail(FailNetwork, err)
	}

	if l.opts.Limiters != nil {
		if err := l.opts.Limiters.Wait(ctx, u.Hostname()); err != nil {
			return nil, fail(FailNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fail(FailNetwork, err)
	}
	setBrowserHeaders(req, l.opts.UserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fail(FailNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if l.opts.Limiters != nil {
		l.opts.Limiters.Observe(u.Hostname(), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBodyBytes))
	if err != nil {
		return nil, fail(FailNetwork, err)
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		fe := fail(FailBlocked, nil)
		fe.StatusCode = resp.StatusCode
		fe.Block = blockType
		return nil, fe
	}

	if resp.StatusCode >= 400 {
		fe := fail(FailStatus, nil)
		fe.StatusCode = resp.StatusCode
		return nil, fe
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fail(FailEmpty, nil)
	}

	title, text := parseHTML(body)
	return &Page{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Title:      title,
		HTML:       string(body),
		Text:       text,
		Source:     l.Name(),
	}, nil
}

// setBrowserHeaders makes the request look like a desktop browser visit.
func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// parseHTML returns the document title and its visible text. Footers are
// kept on purpose since that is where contact addresses usually live.
func parseHTML(body []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", collapseSpace(string(body))
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template, svg").Remove()
	return title, collapseSpace(doc.Text())
}
