package suggest

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/jina"
)

// SearchSuggester looks the company up with a web search and proposes the
// registrable domains of the top results that are not directories or
// social networks.
type SearchSuggester struct {
	client  jina.Client
	breaker *resilience.CircuitBreaker
}

// NewSearchSuggester creates a SearchSuggester.
func NewSearchSuggester(client jina.Client, breaker *resilience.CircuitBreaker) *SearchSuggester {
	return &SearchSuggester{client: client, breaker: breaker}
}

// SuggestDomains implements company.DomainSuggester.
func (s *SearchSuggester) SuggestDomains(ctx context.Context, name string, loc model.Location) ([]string, error) {
	query := name + " official website"
	if !loc.IsZero() {
		query = name + " " + loc.String() + " official website"
	}

	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*jina.SearchResponse, error) {
		return s.client.Search(ctx, query)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "suggest: search for %q", name)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, r := range resp.Data {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Hostname() == "" {
			continue
		}
		d := company.BaseDomain(u.Hostname())
		if company.IsGeneric(d) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}
