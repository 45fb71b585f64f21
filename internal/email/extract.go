// Package email pulls business contact addresses out of page content,
// checks that a page belongs to the company, and guesses addresses when a
// site publishes none.
package email

import (
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/model"
)

var (
	addressRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	exactRe   = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
)

// PriorityPrefixes are local-part prefixes of shared business inboxes.
var PriorityPrefixes = []string{
	"info", "contact", "sales", "support", "admin", "hello", "help",
	"service", "orders", "wholesale", "inquiry", "inquiries", "enquiries",
	"business", "office", "team", "general", "mail",
}

var freeMailProviders = map[string]struct{}{
	"gmail": {}, "googlemail": {}, "yahoo": {}, "hotmail": {}, "outlook": {},
	"aol": {}, "icloud": {}, "live": {}, "msn": {}, "me": {},
	"protonmail": {}, "proton": {}, "ymail": {}, "gmx": {},
}

var automatedLocals = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply", "mailer-daemon",
	"postmaster", "unsubscribe", "bounce",
}

var placeholderDomains = map[string]struct{}{
	"test.com": {}, "domain.com": {}, "email.com": {}, "website.com": {},
	"company.com": {}, "mail.com": {},
}

var placeholderFragments = []string{
	"localhost", "yourdomain", "yoursite", "samplewebsite", "placeholder",
	"sentry", "wixpress",
}

var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// Extract returns the business addresses found in content, ranked with
// priority-prefix addresses first and otherwise in first-seen order.
// content may be HTML or plain text; entities are decoded before scanning.
func Extract(content, sourceURL string) []model.ExtractedEmail {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	decoded := html.UnescapeString(content)

	var out []model.ExtractedEmail
	seen := make(map[string]struct{})
	add := func(raw string) {
		addr := normalize(raw)
		if _, dup := seen[addr]; dup || !Valid(addr) {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, model.ExtractedEmail{
			Address:   addr,
			SourceURL: sourceURL,
			Category:  categorize(addr),
		})
	}

	for _, m := range addressRe.FindAllString(decoded, -1) {
		add(m)
	}
	// mailto hrefs can carry percent-encoded addresses the pattern misses.
	if strings.Contains(content, "<") {
		for _, m := range mailtoAddresses(content) {
			add(m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Category == model.CategoryPriority && out[j].Category != model.CategoryPriority
	})
	return out
}

// Best returns the top-ranked address.
func Best(emails []model.ExtractedEmail) (model.ExtractedEmail, bool) {
	if len(emails) == 0 {
		return model.ExtractedEmail{}, false
	}
	return emails[0], true
}

// Valid reports whether addr is a well-formed business address: not a free
// mail provider, automated sender, placeholder or image filename.
func Valid(addr string) bool {
	if !exactRe.MatchString(addr) {
		return false
	}
	at := strings.LastIndex(addr, "@")
	local, domain := addr[:at], addr[at+1:]
	if len(local) < 2 || len(domain) < 4 {
		return false
	}
	if strings.Contains(domain, "..") || strings.HasPrefix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasPrefix(local, ".") {
		return false
	}
	for _, suffix := range imageSuffixes {
		if strings.Contains(addr, suffix) {
			return false
		}
	}
	for _, a := range automatedLocals {
		if strings.Contains(local, a) {
			return false
		}
	}
	if isPlaceholder(domain) || isFreeMail(domain) {
		return false
	}
	return true
}

func isPlaceholder(domain string) bool {
	if strings.HasPrefix(domain, "example.") {
		return true
	}
	if _, ok := placeholderDomains[domain]; ok {
		return true
	}
	for _, f := range placeholderFragments {
		if strings.Contains(domain, f) {
			return true
		}
	}
	return false
}

func isFreeMail(domain string) bool {
	base := company.BaseDomain(domain)
	label, _, _ := strings.Cut(base, ".")
	_, ok := freeMailProviders[label]
	return ok
}

func categorize(addr string) model.EmailCategory {
	for _, p := range PriorityPrefixes {
		if strings.HasPrefix(addr, p) {
			return model.CategoryPriority
		}
	}
	return model.CategoryOther
}

// normalize lowercases raw and trims punctuation the pattern can drag in.
func normalize(raw string) string {
	addr := strings.ToLower(strings.TrimSpace(raw))
	addr = strings.Trim(addr, ".-_%+")
	return addr
}

func mailtoAddresses(content string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
			return
		}
		addr, _, _ := strings.Cut(href[7:], "?")
		if dec, err := url.PathUnescape(addr); err == nil {
			addr = dec
		}
		// mailto:a@x.com,b@x.com
		out = append(out, strings.Split(addr, ",")...)
	})
	return out
}
