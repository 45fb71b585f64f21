//go:build !integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-finder/internal/config"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/resolve"
)

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{
			Timeout:      time.Second,
			UserAgent:    "test",
			MaxBodyBytes: 1 << 16,
			HostRPS:      10,
			HostBurst:    2,
			JinaFallback: true,
		},
		Probe:   config.ProbeConfig{Timeout: time.Second},
		Resolve: config.ResolveConfig{Strategy: "hybrid"},
		Batch: config.BatchConfig{
			MaxCompanies: 10,
			Deadline:     time.Minute,
			Delay:        0,
			Concurrency:  2,
		},
		Server: config.ServerConfig{Port: 8080, MaxCompanies: 5},
	}
}

func TestInitPipeline_DefaultsToConfiguredStrategy(t *testing.T) {
	cfg = testConfig()

	env, err := initPipeline(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, env.Resolver)
	assert.Equal(t, "hybrid", env.Profile.Name)
	assert.NotNil(t, env.Breakers)
}

func TestInitPipeline_FlagOverridesConfig(t *testing.T) {
	cfg = testConfig()

	env, err := initPipeline(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", env.Profile.Name)
}

func TestInitPipeline_UnknownStrategy(t *testing.T) {
	cfg = testConfig()

	_, err := initPipeline(context.Background(), "thorough")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolve.ErrUnknownProfile)
}

func TestInitPipeline_BadStrictnessOverride(t *testing.T) {
	cfg = testConfig()
	cfg.Resolve.Strictness = "paranoid"

	_, err := initPipeline(context.Background(), "")
	require.Error(t, err)
}

func TestInitPipeline_WithJinaKey(t *testing.T) {
	cfg = testConfig()
	cfg.Jina.Key = "jina-test"
	cfg.Jina.BaseURL = "http://127.0.0.1:1"

	env, err := initPipeline(context.Background(), "accurate")
	require.NoError(t, err)
	assert.NotNil(t, env.Resolver)
}

func TestBuildSuggester_NoKeys(t *testing.T) {
	cfg = testConfig()

	profile, err := resolve.LoadProfile("hybrid")
	require.NoError(t, err)
	env, err := initPipeline(context.Background(), "hybrid")
	require.NoError(t, err)

	assert.Nil(t, buildSuggester(context.Background(), profile, env.Breakers))
}

func TestBuildSuggester_AnthropicKey(t *testing.T) {
	cfg = testConfig()
	cfg.Anthropic.Key = "sk-test"

	profile, err := resolve.LoadProfile("accurate")
	require.NoError(t, err)
	env, err := initPipeline(context.Background(), "accurate")
	require.NoError(t, err)

	assert.NotNil(t, buildSuggester(context.Background(), profile, env.Breakers))
}

func TestBatchConfig(t *testing.T) {
	cfg = testConfig()

	bc := batchConfig()
	assert.Equal(t, 10, bc.MaxCompanies)
	assert.Equal(t, time.Minute, bc.Deadline)
	assert.Equal(t, 2, bc.Concurrency)
}

func TestNewRecord(t *testing.T) {
	rec, err := newRecord("  Acme Widgets, LLC ", model.Location{City: "Austin"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets", rec.Name)
	assert.Equal(t, "Austin", rec.Location.City)

	_, err = newRecord("N/A", model.Location{}, nil)
	require.Error(t, err)
}
