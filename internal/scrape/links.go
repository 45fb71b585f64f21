package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-finder/internal/company"
)

// DefaultLinkKeywords mark anchors that likely lead to contact details.
var DefaultLinkKeywords = []string{
	"contact", "about", "support", "help", "sales", "reach",
	"connect", "touch", "team", "inquiry", "office",
}

// DefaultMaxLinks caps discovered links per page.
const DefaultMaxLinks = 10

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

type anchor struct {
	href string
	text string
}

// ContactLinks returns same-site links on page whose href or anchor text
// contains one of keywords, resolved against the page URL, in document
// order, deduplicated, excluding matcher hits, and capped at max.
func ContactLinks(page *Page, keywords []string, max int, matcher *PathMatcher) []string {
	if page == nil {
		return nil
	}
	base, err := url.Parse(page.BaseURL())
	if err != nil || base.Host == "" {
		return nil
	}
	if len(keywords) == 0 {
		keywords = DefaultLinkKeywords
	}
	if max <= 0 {
		max = DefaultMaxLinks
	}

	var anchors []anchor
	if page.HTML != "" {
		anchors = htmlAnchors(page.HTML)
	} else {
		anchors = markdownAnchors(page.Text)
	}

	site := company.BaseDomain(base.Hostname())
	self := normalizeLink(base)
	seen := map[string]struct{}{self: {}}
	var out []string

	for _, a := range anchors {
		if len(out) == max {
			break
		}
		href := strings.TrimSpace(a.href)
		lowerHref := strings.ToLower(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(lowerHref, "javascript:") ||
			strings.HasPrefix(lowerHref, "mailto:") ||
			strings.HasPrefix(lowerHref, "tel:") {
			continue
		}
		if !containsAny(lowerHref, keywords) && !containsAny(strings.ToLower(a.text), keywords) {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if company.BaseDomain(abs.Hostname()) != site {
			continue
		}

		link := normalizeLink(abs)
		if _, dup := seen[link]; dup {
			continue
		}
		if matcher.IsExcluded(link) {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

func htmlAnchors(html string) []anchor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var out []anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := s.Text()
		if title, ok := s.Attr("title"); ok {
			text += " " + title
		}
		out = append(out, anchor{href: href, text: text})
	})
	return out
}

func markdownAnchors(text string) []anchor {
	var out []anchor
	for _, m := range markdownLink.FindAllStringSubmatch(text, -1) {
		out = append(out, anchor{href: m[2], text: m[1]})
	}
	return out
}

// normalizeLink drops the fragment and a trailing slash so "/contact" and
// "/contact/#form" dedupe.
func normalizeLink(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	s := c.String()
	if c.RawQuery == "" {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
