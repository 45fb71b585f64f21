package email

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/company"
)

// Strictness selects a relevance threshold.
type Strictness string

const (
	Lenient  Strictness = "lenient"
	Balanced Strictness = "balanced"
	Strict   Strictness = "strict"
)

// Threshold returns the minimum word-match ratio for s.
func (s Strictness) Threshold() (float64, error) {
	switch s {
	case Lenient:
		return 0.1, nil
	case Balanced, "":
		return 0.2, nil
	case Strict:
		return 0.3, nil
	}
	return 0, eris.Errorf("email: unknown strictness %q", s)
}

// DefaultExemptPaths are path fragments of pages whose purpose is contact
// details; they skip the ratio threshold.
var DefaultExemptPaths = []string{
	"/contact", "/wholesale", "/get-in-touch", "/reach-us", "/inquir", "/enquir",
}

// Validator decides whether a page is about the company being resolved.
type Validator struct {
	Threshold   float64
	ExemptPaths []string
}

// NewValidator builds a Validator for the given strictness.
func NewValidator(s Strictness) (*Validator, error) {
	th, err := s.Threshold()
	if err != nil {
		return nil, err
	}
	return &Validator{Threshold: th, ExemptPaths: DefaultExemptPaths}, nil
}

// Verdict is the outcome of a relevance check.
type Verdict struct {
	Accepted bool
	Ratio    float64
	Matched  int
	Total    int
	Exempt   bool
}

// Check matches the significant words of the company name against the
// page text. A page with zero matches is rejected whenever the name has
// two or more words.
func (v *Validator) Check(text, pageURL string, words []string) Verdict {
	total := len(words)
	if total == 0 {
		return Verdict{Accepted: true, Exempt: true}
	}

	folded := company.Fold(text)
	matched := 0
	for _, w := range words {
		if strings.Contains(folded, w) {
			matched++
		}
	}
	verdict := Verdict{Matched: matched, Total: total, Ratio: float64(matched) / float64(total)}

	switch {
	case total == 1:
		verdict.Exempt = true
		verdict.Accepted = true
	case matched == 0:
		verdict.Accepted = false
	case v.exemptPath(pageURL):
		verdict.Exempt = true
		verdict.Accepted = true
	default:
		verdict.Accepted = verdict.Ratio >= v.Threshold
	}
	return verdict
}

func (v *Validator) exemptPath(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, frag := range v.ExemptPaths {
		if strings.Contains(p, frag) {
			return true
		}
	}
	return false
}
