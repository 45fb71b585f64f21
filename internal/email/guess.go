package email

import (
	"github.com/sells-group/contact-finder/internal/company"
)

// DefaultGuessPrefixes are tried in order when guessing an address.
var DefaultGuessPrefixes = []string{
	"info", "contact", "hello", "sales", "support", "inquiry", "business",
	"office", "admin", "service", "help", "mail", "general", "team",
}

// Guess returns the first prefix@domain for site that passes Valid. site
// may be a URL or a host; the registrable domain is used.
func Guess(site string, prefixes []string) (string, bool) {
	domain := company.BaseDomain(site)
	if domain == "" {
		return "", false
	}
	if len(prefixes) == 0 {
		prefixes = DefaultGuessPrefixes
	}
	for _, p := range prefixes {
		addr := p + "@" + domain
		if Valid(addr) {
			return addr, true
		}
	}
	return "", false
}
