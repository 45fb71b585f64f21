package resolve

import (
	"github.com/sells-group/contact-finder/internal/email"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/scrape"
)

// DefaultContactPaths are probed on the website in order.
var DefaultContactPaths = []string{
	"/contact", "/contact-us", "/contactus", "/about", "/about-us",
	"/support", "/help", "/customer-service", "/wholesale",
	"/get-in-touch", "/reach-us", "/info",
}

// DefaultSubdomains are tried on the registrable domain in order.
var DefaultSubdomains = []string{"blog", "support", "help", "mail", "contact", "about", "team"}

// Options configures a Resolver.
type Options struct {
	// Stages lists the enabled search stages; empty enables all of them.
	Stages        []model.Stage
	ContactPaths  []string
	LinkKeywords  []string
	MaxLinks      int
	Subdomains    []string
	Platforms     []Platform
	GuessPrefixes []string
	Validator     *email.Validator
	// Matcher filters discovered links; nil excludes nothing.
	Matcher *scrape.PathMatcher
}

// DefaultOptions enables every stage with balanced relevance checking.
func DefaultOptions() Options {
	v, _ := email.NewValidator(email.Balanced)
	return Options{
		ContactPaths:  DefaultContactPaths,
		LinkKeywords:  scrape.DefaultLinkKeywords,
		MaxLinks:      scrape.DefaultMaxLinks,
		Subdomains:    DefaultSubdomains,
		Platforms:     DefaultPlatforms,
		GuessPrefixes: email.DefaultGuessPrefixes,
		Validator:     v,
		Matcher:       scrape.NewPathMatcher(nil),
	}
}

func (o Options) enabled(stage model.Stage) bool {
	if len(o.Stages) == 0 {
		return true
	}
	for _, s := range o.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ContactPaths == nil {
		o.ContactPaths = def.ContactPaths
	}
	if o.LinkKeywords == nil {
		o.LinkKeywords = def.LinkKeywords
	}
	if o.MaxLinks <= 0 {
		o.MaxLinks = def.MaxLinks
	}
	if o.Subdomains == nil {
		o.Subdomains = def.Subdomains
	}
	if o.Platforms == nil {
		o.Platforms = def.Platforms
	}
	if o.GuessPrefixes == nil {
		o.GuessPrefixes = def.GuessPrefixes
	}
	if o.Validator == nil {
		o.Validator = def.Validator
	}
	return o
}
