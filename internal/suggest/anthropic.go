package suggest

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resilience"
	"github.com/sells-group/contact-finder/pkg/anthropic"
)

// AnthropicSuggester asks a Claude model for likely domains.
type AnthropicSuggester struct {
	client  anthropic.Client
	model   string
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewAnthropicSuggester creates an AnthropicSuggester.
func NewAnthropicSuggester(client anthropic.Client, model string, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) *AnthropicSuggester {
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = anthropicTransient
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("anthropic", "suggest_domains")
	}
	return &AnthropicSuggester{client: client, model: model, breaker: breaker, retry: retry}
}

// SuggestDomains implements company.DomainSuggester.
func (s *AnthropicSuggester) SuggestDomains(ctx context.Context, name string, loc model.Location) ([]string, error) {
	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   150,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt(name, loc)}},
		Temperature: &temp,
	}

	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return s.client.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "suggest: anthropic for %q", name)
	}
	resp.Usage.Log(s.model, "suggest_domains")
	return ParseDomains(resp.Text()), nil
}

func anthropicTransient(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
