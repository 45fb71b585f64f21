package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher implements Fetcher for testing.
type stubFetcher struct {
	name     string
	supports bool
	page     *Page
	err      error
	calls    int
}

func (s *stubFetcher) Name() string           { return s.name }
func (s *stubFetcher) Supports(_ string) bool { return s.supports }
func (s *stubFetcher) Fetch(_ context.Context, _ string) (*Page, error) {
	s.calls++
	return s.page, s.err
}

func TestChain_Fetch_FirstSuccess(t *testing.T) {
	primary := &stubFetcher{name: "primary", supports: true, page: &Page{URL: "https://acme.com", Source: "primary"}}
	fallback := &stubFetcher{name: "fallback", supports: true}

	page, err := NewChain(nil, primary, fallback).Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "primary", page.Source)
	assert.Equal(t, 0, fallback.calls)
}

func TestChain_Fetch_FallsThroughOnBlock(t *testing.T) {
	primary := &stubFetcher{name: "primary", supports: true,
		err: &FetchError{URL: "https://acme.com", Fetcher: "primary", Kind: FailBlocked, Block: BlockCloudflare}}
	fallback := &stubFetcher{name: "fallback", supports: true, page: &Page{URL: "https://acme.com", Source: "fallback"}}

	page, err := NewChain(nil, primary, fallback).Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "fallback", page.Source)
}

func TestChain_Fetch_StopsOnNotFound(t *testing.T) {
	primary := &stubFetcher{name: "primary", supports: true,
		err: &FetchError{URL: "https://acme.com/contact", Fetcher: "primary", Kind: FailStatus, StatusCode: 404}}
	fallback := &stubFetcher{name: "fallback", supports: true, page: &Page{Source: "fallback"}}

	_, err := NewChain(nil, primary, fallback).Fetch(context.Background(), "https://acme.com/contact")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoContent))
	assert.Equal(t, 0, fallback.calls)
}

func TestChain_Fetch_SkipsUnsupported(t *testing.T) {
	off := &stubFetcher{name: "off", supports: false, page: &Page{Source: "off"}}
	on := &stubFetcher{name: "on", supports: true, page: &Page{Source: "on"}}

	page, err := NewChain(nil, off, on).Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "on", page.Source)
	assert.Equal(t, 0, off.calls)
}

func TestChain_Fetch_AllBlocked(t *testing.T) {
	blocked := &FetchError{Fetcher: "x", Kind: FailBlocked}
	a := &stubFetcher{name: "a", supports: true, err: blocked}
	b := &stubFetcher{name: "b", supports: true, err: blocked}

	_, err := NewChain(nil, a, b).Fetch(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrBlocked))
	assert.Equal(t, 1, b.calls)
}

func TestChain_Fetch_Excluded(t *testing.T) {
	f := &stubFetcher{name: "f", supports: true, page: &Page{}}

	_, err := NewChain(NewPathMatcher(nil), f).Fetch(context.Background(), "https://acme.com/blog/post")
	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FailExcluded, fe.Kind)
	assert.Equal(t, 0, f.calls)
}

func TestChain_Fetch_NoFetchers(t *testing.T) {
	_, err := NewChain(nil).Fetch(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoContent))
}
