package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-finder/internal/company"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/anthropic"
	anthropicmocks "github.com/sells-group/contact-finder/pkg/anthropic/mocks"
	geminimocks "github.com/sells-group/contact-finder/pkg/gemini/mocks"
	"github.com/sells-group/contact-finder/pkg/jina"
	jinamocks "github.com/sells-group/contact-finder/pkg/jina/mocks"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func breaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("test", resilience.DefaultCircuitBreakerConfig())
}

func TestParseDomains(t *testing.T) {
	reply := "1. https://www.AcmeWidgets.com/\n- acmewidgets.com\n* acme-widgets.net\nfacebook.com/acme\nnot a domain\n`acmewidgets.co`"
	assert.Equal(t, []string{"acmewidgets.com", "acme-widgets.net", "acmewidgets.co"}, ParseDomains(reply))
}

func TestParseDomains_Cap(t *testing.T) {
	got := ParseDomains("a1.com, a2.com, a3.com, a4.com, a5.com, a6.com")
	assert.Len(t, got, MaxSuggestions)
}

func TestUserPrompt(t *testing.T) {
	p := userPrompt("Acme Widgets", model.Location{City: "Austin", State: "TX"})
	assert.Contains(t, p, "Company: Acme Widgets")
	assert.Contains(t, p, "Location: Austin, TX")
	assert.NotContains(t, userPrompt("Acme", model.Location{}), "Location:")
}

func TestAnthropicSuggester(t *testing.T) {
	client := anthropicmocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" && req.System == systemPrompt
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "acmewidgets.com\nacme.io"}},
	}, nil).Once()

	s := NewAnthropicSuggester(client, "claude-haiku-4-5-20251001", breaker(), fastRetry())
	got, err := s.SuggestDomains(context.Background(), "Acme Widgets", model.Location{})
	require.NoError(t, err)
	assert.Equal(t, []string{"acmewidgets.com", "acme.io"}, got)
}

func TestAnthropicSuggester_RetriesTransient(t *testing.T) {
	client := anthropicmocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, resilience.NewTransientError(eris.New("overloaded"), 529)).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: "acme.com"}}}, nil).Once()

	s := NewAnthropicSuggester(client, "m", breaker(), fastRetry())
	got, err := s.SuggestDomains(context.Background(), "Acme", model.Location{})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme.com"}, got)
}

func TestAnthropicSuggester_Error(t *testing.T) {
	client := anthropicmocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("invalid api key")).Once()

	s := NewAnthropicSuggester(client, "m", breaker(), fastRetry())
	_, err := s.SuggestDomains(context.Background(), "Acme", model.Location{})
	assert.Error(t, err)
}

func TestGeminiSuggester(t *testing.T) {
	client := geminimocks.NewMockClient(t)
	client.On("GenerateText", mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) > 0
	})).Return("bluebirdtextiles.com\nbluebird.co", nil).Once()

	s := NewGeminiSuggester(client, breaker(), fastRetry())
	got, err := s.SuggestDomains(context.Background(), "Bluebird Textiles", model.Location{Country: "US"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bluebirdtextiles.com", "bluebird.co"}, got)
}

func TestSearchSuggester(t *testing.T) {
	client := jinamocks.NewMockClient(t)
	client.On("Search", mock.Anything, "Acme Widgets Austin, TX official website", mock.Anything).Return(&jina.SearchResponse{
		Data: []jina.SearchResult{
			{URL: "https://www.yelp.com/biz/acme-widgets-austin"},
			{URL: "https://shop.acmewidgets.com/about"},
			{URL: "https://www.acmewidgets.com/"},
			{URL: "https://www.linkedin.com/company/acme-widgets"},
			{URL: "https://acmewidgets-supply.com"},
		},
	}, nil).Once()

	s := NewSearchSuggester(client, breaker())
	got, err := s.SuggestDomains(context.Background(), "Acme Widgets", model.Location{City: "Austin", State: "TX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"acmewidgets.com", "acmewidgets-supply.com"}, got)
}

type fixedSuggester struct {
	domains []string
	err     error
}

func (f fixedSuggester) SuggestDomains(context.Context, string, model.Location) ([]string, error) {
	return f.domains, f.err
}

func TestMulti(t *testing.T) {
	m := Multi{
		fixedSuggester{err: eris.New("down")},
		fixedSuggester{},
		fixedSuggester{domains: []string{"acme.com"}},
	}
	got, err := m.SuggestDomains(context.Background(), "Acme", model.Location{})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme.com"}, got)

	_, err = Multi{fixedSuggester{err: eris.New("down")}}.SuggestDomains(context.Background(), "Acme", model.Location{})
	assert.Error(t, err)
}

func TestMulti_FeedsGenerator(t *testing.T) {
	gen := company.NewGenerator(0, Multi{fixedSuggester{domains: []string{"acmewidgets.com"}}})
	got := gen.Candidates(context.Background(), "Acme Widgets", model.Location{})
	require.NotEmpty(t, got)
	assert.Equal(t, "acmewidgets.com", got[0].Domain)
}
