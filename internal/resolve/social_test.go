package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/jina"
	jinamocks "github.com/sells-group/contact-finder/pkg/jina/mocks"
)

func instagram() Platform { return DefaultPlatforms[0] }

func TestSlugProfileFinder(t *testing.T) {
	got := SlugProfileFinder{}.FindProfiles(context.Background(), "Café & Co Widgets", instagram())
	assert.Equal(t, []string{
		"https://www.instagram.com/cafeandcowidgets/",
		"https://www.instagram.com/cafe-and-co-widgets/",
	}, got)

	got = SlugProfileFinder{}.FindProfiles(context.Background(), "Acme", DefaultPlatforms[2])
	assert.Equal(t, []string{"https://www.linkedin.com/company/acme"}, got)

	assert.Empty(t, SlugProfileFinder{}.FindProfiles(context.Background(), "!!!", instagram()))
}

func TestPlatformOwns(t *testing.T) {
	twitter := DefaultPlatforms[3]
	assert.True(t, twitter.owns("https://x.com/acme"))
	assert.True(t, twitter.owns("https://mobile.twitter.com/acme"))
	assert.False(t, twitter.owns("https://acme.com/twitter.com"))
}

func breaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("jina_search", resilience.CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
}

func TestSearchProfileFinder_PrefersNameMatches(t *testing.T) {
	client := jinamocks.NewMockClient(t)
	client.On("Search", mock.Anything, "Acme Widgets", mock.Anything).Return(&jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{URL: "https://www.instagram.com/p/Cx123/"},
			{URL: "https://www.instagram.com/widgetfans/"},
			{URL: "https://www.facebook.com/acmewidgets"},
			{URL: "https://www.instagram.com/acmewidgets/"},
			{URL: "https://instagram.com/acmewidgets"},
			{URL: "https://www.instagram.com/explore/tags/widgets/"},
		},
	}, nil)

	got := NewSearchProfileFinder(client, breaker()).FindProfiles(context.Background(), "Acme Widgets", instagram())
	assert.Equal(t, []string{
		"https://www.instagram.com/acmewidgets/",
		"https://www.instagram.com/widgetfans/",
	}, got)
}

func TestSearchProfileFinder_FallsBackToSlugs(t *testing.T) {
	client := jinamocks.NewMockClient(t)
	client.On("Search", mock.Anything, "Acme Widgets", mock.Anything).Return(nil, eris.New("search down"))

	got := NewSearchProfileFinder(client, breaker()).FindProfiles(context.Background(), "Acme Widgets", instagram())
	assert.Equal(t, []string{
		"https://www.instagram.com/acmewidgets/",
		"https://www.instagram.com/acme-widgets/",
	}, got)
}
