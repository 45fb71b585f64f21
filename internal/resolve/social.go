package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/jina"
)

// Platform is a social network whose public profiles often list a business
// email.
type Platform struct {
	Name string
	// Hosts are the registrable domains the platform serves profiles on.
	Hosts []string
	// ProfileURL formats a handle into a profile URL.
	ProfileURL string
}

// DefaultPlatforms are searched in order.
var DefaultPlatforms = []Platform{
	{Name: "Instagram", Hosts: []string{"instagram.com"}, ProfileURL: "https://www.instagram.com/%s/"},
	{Name: "Facebook", Hosts: []string{"facebook.com"}, ProfileURL: "https://www.facebook.com/%s"},
	{Name: "LinkedIn", Hosts: []string{"linkedin.com"}, ProfileURL: "https://www.linkedin.com/company/%s"},
	{Name: "Twitter", Hosts: []string{"twitter.com", "x.com"}, ProfileURL: "https://twitter.com/%s"},
}

// MaxProfilesPerPlatform caps how many profile pages are fetched per network.
const MaxProfilesPerPlatform = 2

// owns reports whether rawURL is served by the platform.
func (p Platform) owns(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	base := company.BaseDomain(u.Hostname())
	for _, h := range p.Hosts {
		if base == h {
			return true
		}
	}
	return false
}

// ProfileFinder locates candidate profile URLs for a company on a platform.
type ProfileFinder interface {
	FindProfiles(ctx context.Context, name string, p Platform) []string
}

// SlugProfileFinder guesses profile URLs from the company name.
type SlugProfileFinder struct{}

// FindProfiles returns the compact handle first ("acmewidgets"), then the
// hyphenated one ("acme-widgets") when it differs.
func (SlugProfileFinder) FindProfiles(_ context.Context, name string, p Platform) []string {
	var out []string
	for _, slug := range slugs(name) {
		out = append(out, fmt.Sprintf(p.ProfileURL, slug))
		if len(out) == MaxProfilesPerPlatform {
			break
		}
	}
	return out
}

func slugs(name string) []string {
	words := nameTokens(name)
	if len(words) == 0 {
		return nil
	}
	compact := strings.Join(words, "")
	hyphen := strings.Join(words, "-")
	if compact == hyphen {
		return []string{compact}
	}
	return []string{compact, hyphen}
}

// nameTokens splits a name into folded alphanumeric words with "&" spelled
// out.
func nameTokens(name string) []string {
	folded := company.Fold(strings.ReplaceAll(name, "&", " and "))
	folded = strings.NewReplacer("'", "", "’", "").Replace(folded)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
}

// nonProfilePaths mark post, search or listing pages rather than profiles.
var nonProfilePaths = []string{"/p/", "/posts/", "/explore/", "/hashtag/", "/status/", "/search", "/reel/", "/events/"}

// SearchProfileFinder finds profiles with a site-restricted web search and
// falls back to slug guesses when the search yields nothing usable.
type SearchProfileFinder struct {
	client   jina.Client
	breaker  *resilience.CircuitBreaker
	fallback SlugProfileFinder
}

// NewSearchProfileFinder creates a SearchProfileFinder.
func NewSearchProfileFinder(client jina.Client, breaker *resilience.CircuitBreaker) *SearchProfileFinder {
	return &SearchProfileFinder{client: client, breaker: breaker}
}

// FindProfiles implements ProfileFinder.
func (f *SearchProfileFinder) FindProfiles(ctx context.Context, name string, p Platform) []string {
	found := f.search(ctx, name, p)
	if len(found) == 0 {
		return f.fallback.FindProfiles(ctx, name, p)
	}
	return found
}

func (f *SearchProfileFinder) search(ctx context.Context, name string, p Platform) []string {
	if len(p.Hosts) == 0 {
		return nil
	}
	resp, err := resilience.ExecuteVal(ctx, f.breaker, func(ctx context.Context) (*jina.SearchResponse, error) {
		return f.client.Search(ctx, name, jina.WithSiteFilter(p.Hosts[0]))
	})
	if err != nil {
		zap.L().Debug("resolve: profile search failed",
			zap.String("company", name),
			zap.String("platform", p.Name),
			zap.Error(err),
		)
		return nil
	}

	var keywords []string
	for _, w := range nameTokens(name) {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}

	var preferred, rest []string
	seen := make(map[string]struct{})
	for _, r := range resp.Data {
		link := strings.TrimSpace(r.URL)
		if !p.owns(link) || isNonProfile(link) {
			continue
		}
		key := normalizeURL(link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		lower := strings.ToLower(link)
		if containsAnyWord(lower, keywords) {
			preferred = append(preferred, link)
		} else {
			rest = append(rest, link)
		}
	}

	out := append(preferred, rest...)
	if len(out) > MaxProfilesPerPlatform {
		out = out[:MaxProfilesPerPlatform]
	}
	return out
}

func isNonProfile(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		return true
	}
	for _, frag := range nonProfilePaths {
		if strings.Contains(path, frag) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
