// Package resolve runs the fallback chain that turns a company record into
// a contact email: homepage, contact pages, discovered links, subdomains,
// social profiles, and finally a format guess.
package resolve

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/email"
	"github.com/sells-group/contact-finder/internal/metrics"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/scrape"
)

// CandidateSource ranks candidate domains for a company.
type CandidateSource interface {
	Candidates(ctx context.Context, name string, loc model.Location) []model.DomainCandidate
}

// Prober finds the first live website among candidates.
type Prober interface {
	FindWebsite(ctx context.Context, candidates []model.DomainCandidate) (*model.ProbeResult, error)
}

// Deps are the collaborators a Resolver needs. Profiles and Fallback are
// optional.
type Deps struct {
	Candidates CandidateSource
	Prober     Prober
	Fetcher    scrape.Fetcher
	Profiles   ProfileFinder
	// Fallback proposes more domains when no candidate is reachable.
	Fallback company.DomainSuggester
}

// Resolver resolves one company at a time. It is safe for concurrent use
// when its dependencies are.
type Resolver struct {
	deps Deps
	opts Options
}

// New creates a Resolver.
func New(deps Deps, opts Options) *Resolver {
	return &Resolver{deps: deps, opts: opts.withDefaults()}
}

// attempt is the mutable state of one resolution.
type attempt struct {
	r        *Resolver
	rec      model.CompanyRecord
	words    []string
	res      model.ResolutionResult
	visited  map[string]struct{}
	homepage *scrape.Page
	site     *model.ProbeResult
	base     *url.URL
}

// Resolve walks the fallback chain for rec and returns exactly one result.
// Stage failures are recorded in the trace and never abort the chain.
func (r *Resolver) Resolve(ctx context.Context, rec model.CompanyRecord) model.ResolutionResult {
	name := rec.Name
	if name == "" {
		name = rec.RawName
	}
	a := &attempt{
		r:       r,
		rec:     rec,
		words:   company.SignificantWords(name),
		visited: make(map[string]struct{}),
		res: model.ResolutionResult{
			Company: name,
			Extra:   rec.Extra,
		},
	}

	log := zap.L().With(zap.String("company", name))
	start := time.Now()

	a.site = r.findWebsite(ctx, name, rec.Location)
	if a.site == nil {
		a.report(model.StageNoWebsite, "", model.MissUnreachable)
		if !a.runStage(ctx, model.StageSocialProfile, a.social) {
			a.finish(model.StageExhausted, "", fmt.Sprintf("No website found for %s", name))
		}
	} else {
		a.res.Website = a.site.URL
		a.base = siteBase(a.site.URL)
		a.run(ctx)
	}

	metrics.ObserveResolution(string(a.res.Stage), a.res.Found())
	log.Info("resolve: done",
		zap.String("stage", string(a.res.Stage)),
		zap.String("email", a.res.Email),
		zap.Bool("guessed", a.res.Guessed),
		zap.String("website", a.res.Website),
		zap.Duration("elapsed", time.Since(start)),
	)
	return a.res
}

func (a *attempt) run(ctx context.Context) {
	stages := []struct {
		stage model.Stage
		fn    func(context.Context) bool
	}{
		{model.StageHomepage, a.homepageStage},
		{model.StageContactPages, a.contactPages},
		{model.StageDynamicLinks, a.dynamicLinks},
		{model.StageSubdomains, a.subdomains},
		{model.StageSocialProfile, a.social},
		{model.StageFormatGuess, a.formatGuess},
	}
	for _, s := range stages {
		if a.runStage(ctx, s.stage, s.fn) {
			return
		}
	}
	a.finish(model.StageExhausted, "", fmt.Sprintf("No emails found on %s", a.site.URL))
}

// runStage reports whether the stage produced an email.
func (a *attempt) runStage(ctx context.Context, stage model.Stage, fn func(context.Context) bool) bool {
	if !a.r.opts.enabled(stage) {
		// The homepage is still needed for link discovery.
		if stage == model.StageHomepage && a.site != nil {
			a.homepage, _ = a.fetch(ctx, a.site.URL)
		}
		a.report(stage, "", model.MissDisabled)
		return false
	}
	start := time.Now()
	found := fn(ctx)
	metrics.ObserveStage(string(stage), time.Since(start))
	return found
}

func (a *attempt) homepageStage(ctx context.Context) bool {
	page, ok := a.fetch(ctx, a.site.URL)
	if !ok {
		a.report(model.StageHomepage, a.site.URL, model.MissUnreachable)
		return false
	}
	a.homepage = page
	if b := siteBase(page.BaseURL()); b != nil {
		a.base = b
	}
	return a.accept(model.StageHomepage, a.site.URL, page, "Homepage", email.Extract)
}

func (a *attempt) contactPages(ctx context.Context) bool {
	for _, p := range a.r.opts.ContactPaths {
		target := a.base.ResolveReference(&url.URL{Path: p}).String()
		if a.tryURL(ctx, model.StageContactPages, target, "Contact page") {
			return true
		}
	}
	return false
}

func (a *attempt) dynamicLinks(ctx context.Context) bool {
	if a.homepage == nil {
		a.report(model.StageDynamicLinks, a.site.URL, model.MissUnreachable)
		return false
	}
	links := scrape.ContactLinks(a.homepage, a.r.opts.LinkKeywords, a.r.opts.MaxLinks, a.r.opts.Matcher)
	if len(links) == 0 {
		a.report(model.StageDynamicLinks, a.homepage.BaseURL(), model.MissNoEmail)
		return false
	}
	for _, link := range links {
		if a.tryURL(ctx, model.StageDynamicLinks, link, "Dynamic contact page") {
			return true
		}
	}
	return false
}

func (a *attempt) subdomains(ctx context.Context) bool {
	host := a.base.Hostname()
	if net.ParseIP(host) != nil {
		a.report(model.StageSubdomains, "", model.MissUnreachable)
		return false
	}
	domain := company.BaseDomain(host)
	for _, sub := range a.r.opts.Subdomains {
		u := url.URL{Scheme: a.base.Scheme, Host: sub + "." + domain}
		if a.base.Port() != "" {
			u.Host += ":" + a.base.Port()
		}
		if a.tryURL(ctx, model.StageSubdomains, u.String(), "Subdomain") {
			return true
		}
	}
	return false
}

func (a *attempt) social(ctx context.Context) bool {
	if a.r.deps.Profiles == nil {
		a.report(model.StageSocialProfile, "", model.MissDisabled)
		return false
	}
	for _, p := range a.r.opts.Platforms {
		profiles := a.r.deps.Profiles.FindProfiles(ctx, a.res.Company, p)
		if len(profiles) == 0 {
			a.report(model.StageSocialProfile, "", model.MissUnreachable)
			continue
		}
		for _, link := range profiles {
			if a.seen(link) {
				continue
			}
			page, ok := a.fetch(ctx, link)
			if !ok {
				a.report(model.StageSocialProfile, link, model.MissUnreachable)
				continue
			}
			if a.accept(model.StageSocialProfile, link, page, p.Name+" profile", email.ExtractSocial) {
				return true
			}
		}
	}
	return false
}

func (a *attempt) formatGuess(_ context.Context) bool {
	addr, ok := email.Guess(a.site.URL, a.r.opts.GuessPrefixes)
	if !ok {
		a.report(model.StageFormatGuess, a.site.URL, model.MissNoEmail)
		return false
	}
	a.res.Email = addr
	a.res.Guessed = true
	a.finish(model.StageFormatGuess, a.site.URL, fmt.Sprintf("Email format guess, not observed: %s", a.site.URL))
	return true
}

// tryURL fetches target once per resolution and accepts its best email.
func (a *attempt) tryURL(ctx context.Context, stage model.Stage, target, label string) bool {
	if a.seen(target) {
		return false
	}
	page, ok := a.fetch(ctx, target)
	if !ok {
		a.report(stage, target, model.MissUnreachable)
		return false
	}
	return a.accept(stage, target, page, label, email.Extract)
}

type extractor func(content, sourceURL string) []model.ExtractedEmail

func (a *attempt) accept(stage model.Stage, target string, page *scrape.Page, label string, extract extractor) bool {
	found := extract(page.Content(), page.BaseURL())
	best, ok := email.Best(found)
	if !ok {
		a.report(stage, target, model.MissNoEmail)
		return false
	}

	verdict := a.r.opts.Validator.Check(page.Title+" "+page.Text, page.BaseURL(), a.words)
	if !verdict.Accepted {
		zap.L().Debug("resolve: page rejected as unrelated",
			zap.String("company", a.res.Company),
			zap.String("url", page.BaseURL()),
			zap.Float64("ratio", verdict.Ratio),
		)
		a.report(stage, target, model.MissLowRelevance)
		return false
	}

	a.res.Email = best.Address
	a.finish(stage, target, fmt.Sprintf("%s: %s", label, page.BaseURL()))
	return true
}

func (a *attempt) fetch(ctx context.Context, target string) (*scrape.Page, bool) {
	a.visited[normalizeURL(target)] = struct{}{}
	page, err := a.r.deps.Fetcher.Fetch(ctx, target)
	if err != nil || page == nil {
		return nil, false
	}
	a.visited[normalizeURL(page.BaseURL())] = struct{}{}
	return page, true
}

func (a *attempt) seen(target string) bool {
	_, ok := a.visited[normalizeURL(target)]
	return ok
}

func (a *attempt) report(stage model.Stage, target string, miss model.MissKind) {
	a.res.Trace = append(a.res.Trace, model.StageReport{Stage: stage, URL: target, Miss: miss})
}

func (a *attempt) finish(stage model.Stage, target, evidence string) {
	a.res.Stage = stage
	a.res.Evidence = evidence
	if stage != model.StageExhausted {
		a.report(stage, target, model.MissNone)
	}
}

// findWebsite probes the ranked candidates, then the fallback suggester's
// domains when none answered.
func (r *Resolver) findWebsite(ctx context.Context, name string, loc model.Location) *model.ProbeResult {
	candidates := r.deps.Candidates.Candidates(ctx, name, loc)
	site, err := r.deps.Prober.FindWebsite(ctx, candidates)
	if err == nil {
		return site
	}
	if !eris.Is(err, scrape.ErrNoWebsite) || r.deps.Fallback == nil {
		return nil
	}

	domains, err := r.deps.Fallback.SuggestDomains(ctx, name, loc)
	if err != nil {
		zap.L().Debug("resolve: fallback suggester failed", zap.String("company", name), zap.Error(err))
		return nil
	}
	tried := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		tried[c.Domain] = struct{}{}
	}
	var extra []model.DomainCandidate
	for _, d := range domains {
		if _, ok := tried[d]; ok {
			continue
		}
		extra = append(extra, model.DomainCandidate{Domain: d, Rank: len(candidates) + len(extra)})
	}
	if len(extra) == 0 {
		return nil
	}
	site, err = r.deps.Prober.FindWebsite(ctx, extra)
	if err != nil {
		return nil
	}
	return site
}

// siteBase returns scheme://host of rawURL.
func siteBase(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	s := u.Scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		s += "?" + u.RawQuery
	}
	return s
}
