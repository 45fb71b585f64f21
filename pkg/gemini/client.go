// Package gemini wraps the Google Gen AI SDK for plain text generation.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client generates text from a prompt.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Config configures a Client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint, for proxies and tests.
	BaseURL string
	// MaxOutputTokens caps the reply; 0 uses the model default.
	MaxOutputTokens int32
}

type sdkClient struct {
	client *genai.Client
	model  string
	maxOut int32
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("gemini: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, eris.New("gemini: model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client, model: cfg.Model, maxOut: cfg.MaxOutputTokens}, nil
}

func (c *sdkClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    genai.Ptr[float32](0),
	}
	if c.maxOut > 0 {
		gc.MaxOutputTokens = c.maxOut
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), gc)
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}
	return resp.Text(), nil
}

// IsTransient reports whether err is a rate limit or server error worth
// retrying.
func IsTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code/100 == 5
	}
	return false
}
