package suggest

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/gemini"
)

// GeminiSuggester asks a Gemini model for likely domains.
type GeminiSuggester struct {
	client  gemini.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewGeminiSuggester creates a GeminiSuggester.
func NewGeminiSuggester(client gemini.Client, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) *GeminiSuggester {
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = func(err error) bool {
			return gemini.IsTransient(err) || resilience.IsTransient(err)
		}
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("gemini", "suggest_domains")
	}
	return &GeminiSuggester{client: client, breaker: breaker, retry: retry}
}

// SuggestDomains implements company.DomainSuggester.
func (s *GeminiSuggester) SuggestDomains(ctx context.Context, name string, loc model.Location) ([]string, error) {
	prompt := systemPrompt + "\n\n" + userPrompt(name, loc)
	text, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (string, error) {
		return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
			return s.client.GenerateText(ctx, prompt)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "suggest: gemini for %q", name)
	}
	return ParseDomains(text), nil
}
