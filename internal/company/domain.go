package company

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var domainRe = regexp.MustCompile(`^([a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// listMarker matches bullets and numbering an AI reply may prefix lines with.
var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// genericDomains are never a company's own website.
var genericDomains = map[string]struct{}{
	"google.com":      {},
	"bing.com":        {},
	"yahoo.com":       {},
	"duckduckgo.com":  {},
	"facebook.com":    {},
	"instagram.com":   {},
	"linkedin.com":    {},
	"twitter.com":     {},
	"x.com":           {},
	"youtube.com":     {},
	"tiktok.com":      {},
	"pinterest.com":   {},
	"wikipedia.org":   {},
	"yelp.com":        {},
	"amazon.com":      {},
	"ebay.com":        {},
	"etsy.com":        {},
	"bbb.org":         {},
	"yellowpages.com": {},
	"mapquest.com":    {},
	"indeed.com":      {},
	"glassdoor.com":   {},
	"crunchbase.com":  {},
	"zoominfo.com":    {},
	"bloomberg.com":   {},
	"manta.com":       {},
}

// CleanDomain normalizes free-form text ("1. https://www.Acme.com/about")
// into a bare lowercase domain. It reports false when the result is not a
// syntactically valid domain.
func CleanDomain(raw string) (string, bool) {
	d := strings.TrimSpace(raw)
	d = listMarker.ReplaceAllString(d, "")
	d = strings.Trim(d, "`'\"<>[]() ")
	d = strings.ToLower(d)
	if strings.Contains(d, "://") {
		if u, err := url.Parse(d); err == nil {
			d = u.Host
		}
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if host, _, err := net.SplitHostPort(d); err == nil {
		d = host
	}
	d = strings.TrimPrefix(d, "www.")
	d = strings.TrimSuffix(d, ".")
	if ascii, err := idna.Lookup.ToASCII(d); err == nil {
		d = ascii
	}
	if !domainRe.MatchString(d) {
		return "", false
	}
	return d, true
}

// BaseDomain returns the registrable domain (eTLD+1) for a host or URL.
// It falls back to the cleaned host when the public suffix list has no
// answer, e.g. for "localhost" or a bare IP.
func BaseDomain(hostOrURL string) string {
	host := hostOrURL
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil {
			host = u.Hostname()
		}
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	base, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return strings.TrimPrefix(host, "www.")
	}
	return base
}

// IsGeneric reports whether the domain belongs to a search engine, social
// network, directory or marketplace.
func IsGeneric(domain string) bool {
	_, ok := genericDomains[BaseDomain(domain)]
	return ok
}
