//go:build !integration

package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/model"
)

// stubResolver finds info@<first word>.com for every company except those
// named in misses.
type stubResolver struct {
	mu     sync.Mutex
	misses map[string]bool
	seen   []string
}

func (s *stubResolver) Resolve(_ context.Context, rec model.CompanyRecord) model.ResolutionResult {
	s.mu.Lock()
	s.seen = append(s.seen, rec.Name)
	s.mu.Unlock()

	if s.misses[rec.Name] {
		return model.ResolutionResult{
			Company:  rec.Name,
			Evidence: "No website found for " + rec.Name,
			Stage:    model.StageExhausted,
			Extra:    rec.Extra,
		}
	}
	site := strings.ToLower(strings.Fields(rec.Name)[0]) + ".com"
	return model.ResolutionResult{
		Company:  rec.Name,
		Email:    "info@" + site,
		Evidence: "Homepage",
		Stage:    model.StageHomepage,
		Website:  "https://" + site,
		Extra:    rec.Extra,
	}
}

func newTestRunner(r batch.Resolver, max int) *batch.Runner {
	return batch.NewRunner(r, batch.Config{
		MaxCompanies: max,
		Deadline:     time.Minute,
		Concurrency:  1,
	})
}
