package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/email"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/internal/resolve"
	"github.com/sells-group/contact-finder/internal/scrape"
	"github.com/sells-group/contact-finder/internal/suggest"
	anthropicpkg "github.com/sells-group/contact-finder/pkg/anthropic"
	"github.com/sells-group/contact-finder/pkg/gemini"
	"github.com/sells-group/contact-finder/pkg/jina"
)

// pipelineEnv holds the resolver and the shared state the run, resolve and
// serve commands need.
type pipelineEnv struct {
	Resolver *resolve.Resolver
	Profile  resolve.Profile
	Breakers *resilience.ServiceBreakers
}

// initPipeline builds the resolver for the named strategy, or the
// configured one when name is empty. Missing API keys disable the
// components that need them rather than failing.
func initPipeline(ctx context.Context, name string) (*pipelineEnv, error) {
	if name == "" {
		name = cfg.Resolve.Strategy
	}
	profile, err := resolve.LoadProfile(name)
	if err != nil {
		return nil, err
	}

	opts := resolve.DefaultOptions()
	if err := profile.Apply(&opts); err != nil {
		return nil, err
	}
	if cfg.Resolve.Strictness != "" {
		v, err := email.NewValidator(email.Strictness(cfg.Resolve.Strictness))
		if err != nil {
			return nil, err
		}
		opts.Validator = v
	}
	opts.Matcher = scrape.NewPathMatcher(cfg.Fetch.ExcludePaths)

	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())

	var jinaClient jina.Client
	if cfg.Jina.Key != "" {
		jinaOpts := []jina.Option{jina.WithBaseURL(cfg.Jina.BaseURL)}
		if cfg.Jina.SearchBaseURL != "" {
			jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		jinaClient = jina.NewClient(cfg.Jina.Key, jinaOpts...)
	}

	maxCandidates := cfg.Domains.MaxCandidates
	if maxCandidates == 0 {
		maxCandidates = profile.MaxCandidates
	}
	generator := company.NewGenerator(maxCandidates, buildSuggester(ctx, profile, breakers))

	var limiters *scrape.HostLimiters
	if cfg.Fetch.HostRPS > 0 {
		limiters = scrape.NewHostLimiters(cfg.Fetch.HostRPS, cfg.Fetch.HostBurst)
	}
	fetchers := []scrape.Fetcher{scrape.NewLocalFetcher(scrape.LocalOptions{
		Timeout:      cfg.Fetch.Timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		Limiters:     limiters,
	})}
	if cfg.Fetch.JinaFallback && jinaClient != nil {
		fetchers = append(fetchers, scrape.NewJinaFetcher(jinaClient, breakers.Get("jina_reader")))
	}

	deps := resolve.Deps{
		Candidates: generator,
		Prober: scrape.NewHTTPProber(scrape.ProbeOptions{
			Timeout:         cfg.Probe.Timeout,
			UserAgent:       cfg.Fetch.UserAgent,
			AcceptForbidden: cfg.Probe.AcceptForbidden,
		}),
		Fetcher:  scrape.NewChain(nil, fetchers...),
		Profiles: resolve.SlugProfileFinder{},
	}
	if jinaClient != nil {
		deps.Profiles = resolve.NewSearchProfileFinder(jinaClient, breakers.Get("jina_search"))
		if profile.SearchFallback {
			deps.Fallback = suggest.NewSearchSuggester(jinaClient, breakers.Get("jina_search"))
		}
	}

	zap.L().Info("pipeline ready",
		zap.String("strategy", profile.Name),
		zap.Any("stages", profile.Stages),
		zap.Int("max_candidates", maxCandidates),
		zap.Float64("relevance_threshold", opts.Validator.Threshold),
		zap.Bool("jina", jinaClient != nil),
	)

	return &pipelineEnv{
		Resolver: resolve.New(deps, opts),
		Profile:  profile,
		Breakers: breakers,
	}, nil
}

// buildSuggester returns the AI domain suggesters the profile enables and
// has keys for, or nil.
func buildSuggester(ctx context.Context, profile resolve.Profile, breakers *resilience.ServiceBreakers) company.DomainSuggester {
	var list suggest.Multi

	if profile.Uses("anthropic") {
		if cfg.Anthropic.Key == "" {
			zap.L().Info("anthropic suggester disabled: no api key")
		} else {
			client := anthropicpkg.NewClient(cfg.Anthropic.Key)
			list = append(list, suggest.NewAnthropicSuggester(client, cfg.Anthropic.Model, breakers.Get("anthropic"), resilience.DefaultRetryConfig()))
		}
	}

	if profile.Uses("gemini") {
		if cfg.Gemini.Key == "" {
			zap.L().Info("gemini suggester disabled: no api key")
		} else {
			client, err := gemini.NewClient(ctx, gemini.Config{
				APIKey:  cfg.Gemini.Key,
				Model:   cfg.Gemini.Model,
				BaseURL: cfg.Gemini.BaseURL,
			})
			if err != nil {
				zap.L().Warn("gemini suggester disabled", zap.Error(err))
			} else {
				list = append(list, suggest.NewGeminiSuggester(client, breakers.Get("gemini"), resilience.DefaultRetryConfig()))
			}
		}
	}

	if len(list) == 0 {
		return nil
	}
	return list
}

func batchConfig() batch.Config {
	return batch.Config{
		MaxCompanies: cfg.Batch.MaxCompanies,
		Deadline:     cfg.Batch.Deadline,
		Delay:        cfg.Batch.Delay,
		Concurrency:  cfg.Batch.Concurrency,
	}
}

// newRecord normalizes a company typed on the command line or sent to the
// API into a record.
func newRecord(raw string, loc model.Location, extra []model.Field) (model.CompanyRecord, error) {
	name, err := company.Normalize(raw)
	if err != nil {
		return model.CompanyRecord{}, err
	}
	return model.CompanyRecord{RawName: raw, Name: name, Location: loc, Extra: extra}, nil
}
