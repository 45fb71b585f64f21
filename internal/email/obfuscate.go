package email

import (
	"regexp"
	"strings"

	"github.com/sells-group/contact-finder/internal/model"
)

var (
	bracketAt  = regexp.MustCompile(`(?i)\s*[\[\(\{]\s*at\s*[\]\)\}]\s*`)
	bracketDot = regexp.MustCompile(`(?i)\s*[\[\(\{]\s*dot\s*[\]\)\}]\s*`)
	spelledAt  = regexp.MustCompile(`(?i)\b([a-z0-9._%+-]+)\s+at\s+([a-z0-9-]+)\s+dot\s+([a-z]{2,})\b`)
	spacedAt   = regexp.MustCompile(`([A-Za-z0-9._%+-]+)\s+@\s+([A-Za-z0-9-]+)\s*\.\s*([A-Za-z]{2,})\b`)

	// labeledRe finds addresses introduced by a label in profile bios.
	labeledRe = regexp.MustCompile(`(?i)(?:e-?mail|contact|reach\s+us|business\s+inquiries|bookings?)\s*[:\-]?\s*([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`)
)

// Deobfuscate rewrites "name [at] acme [dot] com", "name (at) acme.com" and
// "name at acme dot com" into plain addresses.
func Deobfuscate(text string) string {
	text = bracketAt.ReplaceAllString(text, "@")
	text = bracketDot.ReplaceAllString(text, ".")
	text = spelledAt.ReplaceAllString(text, "$1@$2.$3")
	text = spacedAt.ReplaceAllString(text, "$1@$2.$3")
	return text
}

// ExtractSocial is Extract for social profile text: obfuscation is undone
// first and labeled addresses ("Email: x@y.com") rank ahead of the rest.
func ExtractSocial(text, sourceURL string) []model.ExtractedEmail {
	clean := Deobfuscate(text)

	var labeled []string
	for _, m := range labeledRe.FindAllStringSubmatch(clean, -1) {
		labeled = append(labeled, m[1])
	}

	return Extract(strings.Join(labeled, "\n")+"\n"+clean, sourceURL)
}
