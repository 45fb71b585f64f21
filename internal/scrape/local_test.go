package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFetcher_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title> Acme Widgets </title><script>var x = "hidden";</script></head>
<body><h1>Welcome</h1><footer>Write to sales@acme.com</footer></body></html>`))
	}))
	defer srv.Close()

	page, err := NewLocalFetcher(LocalOptions{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets", page.Title)
	assert.Equal(t, 200, page.StatusCode)
	assert.Equal(t, "local_http", page.Source)
	assert.Contains(t, page.HTML, "<footer>")
	assert.Contains(t, page.Text, "sales@acme.com")
	assert.NotContains(t, page.Text, "hidden")
}

func TestLocalFetcher_Fetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/contact-us/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/contact-us/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p>hello@acme.com</p>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := NewLocalFetcher(LocalOptions{}).Fetch(context.Background(), srv.URL+"/contact")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/contact", page.URL)
	assert.Equal(t, srv.URL+"/contact-us/", page.FinalURL)
	assert.Equal(t, srv.URL+"/contact-us/", page.BaseURL())
}

func TestLocalFetcher_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    FailureKind
		blocked bool
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("<html>missing</html>"))
			},
			kind: FailStatus,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("   \n"))
			},
			kind: FailEmpty,
		},
		{
			name: "cloudflare challenge",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("cf-ray", "abc123")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("<html>Just a moment...</html>"))
			},
			kind:    FailBlocked,
			blocked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			page, err := NewLocalFetcher(LocalOptions{}).Fetch(context.Background(), srv.URL)
			require.Error(t, err)
			assert.Nil(t, page)
			assert.True(t, eris.Is(err, ErrNoContent))
			assert.Equal(t, tt.blocked, eris.Is(err, ErrBlocked))

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.kind, fe.Kind)
		})
	}
}

func TestLocalFetcher_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewLocalFetcher(LocalOptions{}).Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoContent))
}

func TestLocalFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := NewLocalFetcher(LocalOptions{}).Fetch(context.Background(), "not a url")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoContent))
}

func TestLocalFetcher_Fetch_TruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	page, err := NewLocalFetcher(LocalOptions{MaxBodyBytes: 100}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.HTML, 100)
}

func TestLocalFetcher_Fetch_WithLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	limiters := NewHostLimiters(100, 1)
	f := NewLocalFetcher(LocalOptions{Limiters: limiters})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Greater(t, float64(limiters.Limit("127.0.0.1")), 100.0)
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{URL: "https://acme.com", Fetcher: "local_http", Kind: FailStatus, StatusCode: 404}
	assert.Equal(t, "local_http: status https://acme.com (status 404)", err.Error())

	err = &FetchError{URL: "https://acme.com", Fetcher: "local_http", Kind: FailBlocked, Block: BlockCaptcha}
	assert.Equal(t, "local_http: blocked https://acme.com (captcha)", err.Error())
}

func TestPage_Content(t *testing.T) {
	assert.Equal(t, "<p>x</p>", (&Page{HTML: "<p>x</p>", Text: "x"}).Content())
	assert.Equal(t, "x", (&Page{Text: "x"}).Content())
}
