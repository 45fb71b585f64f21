// Package company normalizes company names and turns them into ranked
// website domain candidates.
package company

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned for blank or sentinel company names.
var ErrInvalidName = eris.New("company: invalid name")

// sentinelNames are spreadsheet placeholders that mean "no value".
var sentinelNames = map[string]struct{}{
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"na":   {},
	"-":    {},
}

// corporateSuffix matches one trailing entity designator. It requires a
// separator before the suffix so "Costco" or a bare "Co" never match.
var corporateSuffix = regexp.MustCompile(
	`(?i)[\s,]+(LLC|L\.L\.C|INC|CORP|CORPORATION|LTD|LIMITED|CO|COMPANY)\.?\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// stopWords never count as significant name tokens.
var stopWords = map[string]struct{}{
	"the": {},
	"and": {},
	"for": {},
}

// Normalize cleans a raw company string into its display name.
func Normalize(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrInvalidName
	}
	if _, ok := sentinelNames[strings.ToLower(name)]; ok {
		return "", eris.Wrapf(ErrInvalidName, "sentinel value %q", name)
	}

	name = multiSpace.ReplaceAllString(name, " ")

	if loc := corporateSuffix.FindStringIndex(name); loc != nil {
		rest := strings.TrimSpace(name[:loc[0]])
		if nonSpaceLen(rest) >= 2 {
			name = rest
		}
	}

	name = strings.TrimRight(name, " ,")
	if len(tokens(name)) == 0 {
		return "", eris.Wrapf(ErrInvalidName, "no letters or digits in %q", raw)
	}
	return name, nil
}

// SignificantWords returns the lowercase, accent-folded tokens of name that
// are longer than two characters and not stop words, in order, deduplicated.
func SignificantWords(name string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range tokens(name) {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// tokens splits a name into lowercase folded alphanumeric runs.
func tokens(name string) []string {
	folded := strings.ToLower(foldAccents(name))
	folded = strings.NewReplacer("'", "", "’", "").Replace(folded)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Fold lowercases s and strips accents, so page text compares against
// SignificantWords.
func Fold(s string) string {
	return strings.ToLower(foldAccents(s))
}

// foldAccents strips combining marks, so "Café Olé" becomes "Cafe Ole".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
