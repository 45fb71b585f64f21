// Package suggest proposes website domains for a company using language
// models or web search. Every suggester satisfies company.DomainSuggester.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/model"
)

// MaxSuggestions caps the domains taken from a single reply.
const MaxSuggestions = 5

const systemPrompt = "You identify official company websites. Reply with bare domain names only, " +
	"one per line, most likely first. No commentary, no URLs, no numbering."

func userPrompt(name string, loc model.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", name)
	if !loc.IsZero() {
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	fmt.Fprintf(&b, "List up to %d domains this business most likely uses for its website.", MaxSuggestions)
	return b.String()
}

// ParseDomains extracts cleaned, deduplicated, non-generic domains from a
// free-text reply, one candidate per line or comma.
func ParseDomains(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	})
	for _, f := range fields {
		d, ok := company.CleanDomain(f)
		if !ok || company.IsGeneric(d) {
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
	return out
}

// Multi asks each suggester in turn and returns the first non-empty answer.
type Multi []company.DomainSuggester

// SuggestDomains implements company.DomainSuggester.
func (m Multi) SuggestDomains(ctx context.Context, name string, loc model.Location) ([]string, error) {
	var lastErr error
	for _, s := range m {
		domains, err := s.SuggestDomains(ctx, name, loc)
		if err != nil {
			zap.L().Debug("suggest: suggester failed",
				zap.String("company", name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(domains) > 0 {
			return domains, nil
		}
	}
	return nil, lastErr
}
