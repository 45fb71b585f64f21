// Package batch runs the resolver over many companies with deduplication,
// a size cap, a global deadline and a polite delay between companies.
package batch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/metrics"
	"github.com/sells-group/contact-finder/internal/model"
)

// Resolver resolves a single company.
type Resolver interface {
	Resolve(ctx context.Context, rec model.CompanyRecord) model.ResolutionResult
}

// Config bounds a batch run.
type Config struct {
	MaxCompanies int
	Deadline     time.Duration
	// Delay is slept after each company, per worker.
	Delay       time.Duration
	Concurrency int
}

// DefaultConfig returns sequential processing of up to 300 companies in
// eight minutes with a half-second pause between them.
func DefaultConfig() Config {
	return Config{
		MaxCompanies: 300,
		Deadline:     8 * time.Minute,
		Delay:        500 * time.Millisecond,
		Concurrency:  1,
	}
}

// Runner processes batches. A Runner may be reused.
type Runner struct {
	resolver Resolver
	cfg      Config
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithSleep replaces the inter-company delay.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// NewRunner creates a Runner. Zero config fields take their defaults.
func NewRunner(resolver Resolver, cfg Config, opts ...Option) *Runner {
	def := DefaultConfig()
	if cfg.MaxCompanies <= 0 {
		cfg.MaxCompanies = def.MaxCompanies
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = def.Deadline
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	r := &Runner{
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type job struct {
	row int
	rec model.CompanyRecord
}

// Run resolves records and always returns a report. Invalid, duplicate and
// over-cap rows are skipped; rows not started before the deadline or before
// ctx is canceled are reported as unprocessed.
func (r *Runner) Run(ctx context.Context, records []model.CompanyRecord) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	deadline := report.StartedAt.Add(r.cfg.Deadline)
	log := zap.L().With(zap.String("run_id", report.RunID))

	jobs := r.prepare(records, report)
	log.Info("batch: starting",
		zap.Int("rows", len(records)),
		zap.Int("companies", len(jobs)),
		zap.Int("invalid", report.Invalid),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("over_cap", report.OverCap),
		zap.Int("concurrency", r.cfg.Concurrency),
	)

	results := make([]model.ResolutionResult, len(jobs))
	done := make([]bool, len(jobs))
	var mu sync.Mutex
	expired := false

	stop := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if !expired && !r.now().Before(deadline) {
			expired = true
		}
		return expired || ctx.Err() != nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, j := range jobs {
		if stop() {
			break
		}
		g.Go(func() error {
			if stop() {
				return nil
			}
			res := r.resolveOne(gctx, j.rec)
			mu.Lock()
			results[i] = res
			done[i] = true
			mu.Unlock()

			if i < len(jobs)-1 && r.cfg.Delay > 0 {
				_ = r.sleep(gctx, r.cfg.Delay)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range jobs {
		if !done[i] {
			report.skip(j.row, j.rec.Name, SkipUnprocessed)
			continue
		}
		res := results[i]
		report.Results = append(report.Results, res)
		report.Attempted++
		if res.Found() {
			report.Found++
		}
		if res.Guessed {
			report.Guessed++
		}
		if res.Error != "" {
			report.Errors++
		}
	}
	report.DeadlineExceeded = expired && report.Unprocessed > 0
	report.FinishedAt = r.now()

	for _, reason := range []SkipReason{SkipInvalid, SkipDuplicate, SkipOverCap, SkipUnprocessed} {
		metrics.ObserveSkipped(string(reason), report.count(reason))
	}

	fields := []zap.Field{
		zap.Int("attempted", report.Attempted),
		zap.Int("found", report.Found),
		zap.String("found_pct", fmt.Sprintf("%.1f%%", report.FoundPercent())),
		zap.Int("guessed", report.Guessed),
		zap.Int("errors", report.Errors),
		zap.Int("unprocessed", report.Unprocessed),
		zap.Duration("elapsed", report.Duration()),
	}
	if report.DeadlineExceeded {
		log.Warn("batch: deadline reached, returning partial results", fields...)
	} else {
		log.Info("batch: complete", fields...)
	}
	return report
}

// prepare normalizes, deduplicates and caps the input, recording every
// skipped row on report.
func (r *Runner) prepare(records []model.CompanyRecord, report *Report) []job {
	seen := make(map[string]struct{}, len(records))
	jobs := make([]job, 0, min(len(records), r.cfg.MaxCompanies))
	for row, rec := range records {
		name, err := company.Normalize(rec.RawName)
		if err != nil {
			report.skip(row, rec.RawName, SkipInvalid)
			continue
		}
		rec.Name = name
		key := rec.Key()
		if _, dup := seen[key]; dup {
			report.skip(row, name, SkipDuplicate)
			continue
		}
		seen[key] = struct{}{}
		if len(jobs) == r.cfg.MaxCompanies {
			report.skip(row, name, SkipOverCap)
			continue
		}
		jobs = append(jobs, job{row: row, rec: rec})
	}
	return jobs
}

// resolveOne turns a panic inside the resolver into an error result.
func (r *Runner) resolveOne(ctx context.Context, rec model.CompanyRecord) (res model.ResolutionResult) {
	defer func() {
		if p := recover(); p != nil {
			msg := fmt.Sprint(p)
			zap.L().Error("batch: resolver panicked",
				zap.String("company", rec.Name),
				zap.String("panic", msg),
				zap.ByteString("stack", debug.Stack()),
			)
			res = model.ResolutionResult{
				Company:  rec.Name,
				Evidence: "Error: " + msg,
				Error:    msg,
				Stage:    model.StageExhausted,
				Extra:    rec.Extra,
			}
		}
	}()
	return r.resolver.Resolve(ctx, rec)
}

func (r *Report) count(reason SkipReason) int {
	switch reason {
	case SkipInvalid:
		return r.Invalid
	case SkipDuplicate:
		return r.Duplicates
	case SkipOverCap:
		return r.OverCap
	case SkipUnprocessed:
		return r.Unprocessed
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
