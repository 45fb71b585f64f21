package company

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/sells-group/contact-finder/internal/model"
)

const (
	// DefaultMaxCandidates bounds probing latency per company.
	DefaultMaxCandidates = 10
	// MaxCandidatesCeiling is the hard upper bound for any configuration.
	MaxCandidatesCeiling = 12
)

// secondaryTLDs are tried after the .com variants, in this order.
var secondaryTLDs = []string{".net", ".org", ".co", ".io", ".biz"}

// DomainSuggester proposes likely domains for a company, most likely first.
type DomainSuggester interface {
	SuggestDomains(ctx context.Context, name string, loc model.Location) ([]string, error)
}

// Generator produces ranked domain candidates for a normalized name.
type Generator struct {
	maxCandidates int
	suggester     DomainSuggester
}

// NewGenerator creates a Generator. Suggested domains rank ahead of the
// deterministic name heuristics; a nil suggester uses only the heuristics; max <= 0 selects DefaultMaxCandidates.
func NewGenerator(max int, suggester DomainSuggester) *Generator {
	if max <= 0 {
		max = DefaultMaxCandidates
	}
	if max > MaxCandidatesCeiling {
		max = MaxCandidatesCeiling
	}
	return &Generator{maxCandidates: max, suggester: suggester}
}

// Candidates returns deduplicated domains in priority order. Callers must
// try them in sequence and stop at the first reachable one.
func (g *Generator) Candidates(ctx context.Context, name string, loc model.Location) []model.DomainCandidate {
	words := tokens(name)
	compact := label(words, "")

	var primary []string
	if g.suggester != nil {
		suggested, err := g.suggester.SuggestDomains(ctx, name, loc)
		if err != nil {
			zap.L().Warn("company: domain suggester failed, using name heuristics",
				zap.String("company", name),
				zap.Error(err),
			)
		}
		for _, s := range suggested {
			if d, ok := CleanDomain(s); ok {
				primary = append(primary, d)
			}
		}
	}
	// Name heuristics follow any suggestions so <compact>.com is still probed
	// when the suggester guesses wrong.
	primary = append(primary, nameGuesses(words, SignificantWords(name))...)

	all := primary
	if compact != "" {
		if tld := countryTLD(loc); tld != "" {
			all = append(all, compact+tld)
		}
		for _, tld := range secondaryTLDs {
			all = append(all, compact+tld)
		}
	}

	out := make([]model.DomainCandidate, 0, g.maxCandidates)
	seen := make(map[string]struct{}, len(all))
	for _, d := range all {
		if len(out) == g.maxCandidates {
			break
		}
		if _, dup := seen[d]; dup || IsGeneric(d) {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, model.DomainCandidate{Domain: d, Rank: len(out)})
	}
	return out
}

// nameGuesses builds the .com heuristics: compact name, hyphenated name,
// first significant word, acronym.
func nameGuesses(words, significant []string) []string {
	var out []string
	if compact := label(words, ""); compact != "" {
		out = append(out, compact+".com")
	}
	if len(words) > 1 {
		if hyphen := label(words, "-"); hyphen != "" {
			out = append(out, hyphen+".com")
		}
	}
	if len(significant) > 0 && len([]rune(significant[0])) >= 3 {
		if first := label(significant[:1], ""); first != "" {
			out = append(out, first+".com")
		}
	}
	if len(significant) >= 2 {
		n := len(significant)
		if n > 4 {
			n = 4
		}
		var acronym strings.Builder
		for _, w := range significant[:n] {
			acronym.WriteRune([]rune(w)[0])
		}
		if a := label([]string{acronym.String()}, ""); len(a) >= 2 {
			out = append(out, a+".com")
		}
	}
	return out
}

// label joins tokens into a single DNS label, punycoding non-ASCII names.
func label(words []string, sep string) string {
	joined := strings.Join(words, sep)
	if joined == "" {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(joined)
	if err != nil || len(ascii) > 63 {
		return ""
	}
	return ascii
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {},
	"FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {},
	"LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {},
	"NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {},
	"VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
}

var caProvinces = map[string]struct{}{
	"AB": {}, "BC": {}, "MB": {}, "NB": {}, "NL": {}, "NS": {}, "NT": {}, "NU": {},
	"ON": {}, "PE": {}, "QC": {}, "SK": {}, "YT": {},
}

// countryTLD maps location hints to a country-code TLD. The country field
// wins; a bare state or province code is used only when country is blank.
func countryTLD(loc model.Location) string {
	switch strings.ToUpper(strings.TrimSpace(loc.Country)) {
	case "US", "USA", "U.S.", "U.S.A.", "UNITED STATES", "UNITED STATES OF AMERICA":
		return ".us"
	case "CA", "CAN", "CANADA":
		return ".ca"
	case "UK", "GB", "GBR", "U.K.", "UNITED KINGDOM", "GREAT BRITAIN", "ENGLAND", "SCOTLAND", "WALES":
		return ".co.uk"
	case "":
	default:
		return ""
	}

	state := strings.ToUpper(strings.TrimSpace(loc.State))
	if _, ok := usStates[state]; ok {
		return ".us"
	}
	if _, ok := caProvinces[state]; ok {
		return ".ca"
	}
	return ""
}
