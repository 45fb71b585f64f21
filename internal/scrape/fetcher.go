// Package scrape probes candidate websites for liveness and fetches page
// content. It is the only package that talks HTTP to company websites.
package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoContent is matched by every error a Fetcher returns. A fetch never
// fails in any other way, so callers treat any error as "nothing here".
var ErrNoContent = eris.New("scrape: no content")

// ErrBlocked is matched when the site answered with an anti-bot page.
var ErrBlocked = eris.New("scrape: blocked")

// FailureKind says why a fetch produced no content.
type FailureKind string

const (
	FailNetwork  FailureKind = "network"
	FailStatus   FailureKind = "status"
	FailBlocked  FailureKind = "blocked"
	FailEmpty    FailureKind = "empty"
	FailExcluded FailureKind = "excluded"
)

// FetchError describes a failed fetch.
type FetchError struct {
	URL        string
	Fetcher    string
	Kind       FailureKind
	StatusCode int
	Block      BlockType
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Fetcher, e.Kind, e.URL)
	switch {
	case e.StatusCode != 0:
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	case e.Block != BlockNone:
		msg += fmt.Sprintf(" (%s)", e.Block)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match ErrNoContent, and blocked ones ErrBlocked.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNoContent:
		return true
	case ErrBlocked:
		return e.Kind == FailBlocked
	}
	return false
}

// Page is fetched page content.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Title      string
	// HTML is the raw body; empty when the source only returns text.
	HTML string
	// Text is the visible text of the page.
	Text   string
	Source string
}

// Content returns the richest representation available for scanning.
func (p *Page) Content() string {
	if p.HTML != "" {
		return p.HTML
	}
	return p.Text
}

// BaseURL returns the page URL after redirects, falling back to URL.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
	Supports(url string) bool
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
