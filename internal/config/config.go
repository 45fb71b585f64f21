package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Probe      ProbeConfig      `yaml:"probe" mapstructure:"probe"`
	Domains    DomainsConfig    `yaml:"domains" mapstructure:"domains"`
	Resolve    ResolveConfig    `yaml:"resolve" mapstructure:"resolve"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HostRPS      float64       `yaml:"host_rps" mapstructure:"host_rps"`
	HostBurst    int           `yaml:"host_burst" mapstructure:"host_burst"`
	// JinaFallback re-fetches blocked or empty pages through the Jina Reader.
	JinaFallback bool     `yaml:"jina_fallback" mapstructure:"jina_fallback"`
	ExcludePaths []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// ProbeConfig configures website liveness probing.
type ProbeConfig struct {
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	AcceptForbidden bool          `yaml:"accept_forbidden" mapstructure:"accept_forbidden"`
}

// DomainsConfig configures candidate generation. Zero MaxCandidates uses
// the strategy's value.
type DomainsConfig struct {
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// ResolveConfig selects the strategy profile.
type ResolveConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	// Strictness overrides the profile's relevance strictness when set.
	Strictness string `yaml:"strictness" mapstructure:"strictness"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxCompanies int           `yaml:"max_companies" mapstructure:"max_companies"`
	Deadline     time.Duration `yaml:"deadline" mapstructure:"deadline"`
	Delay        time.Duration `yaml:"delay" mapstructure:"delay"`
	Concurrency  int           `yaml:"concurrency" mapstructure:"concurrency"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// MaxCompanies caps companies per API request.
	MaxCompanies int `yaml:"max_companies" mapstructure:"max_companies"`
}

// MonitoringConfig configures batch alerts.
type MonitoringConfig struct {
	WebhookURL         string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	ErrorRateThreshold float64 `yaml:"error_rate_threshold" mapstructure:"error_rate_threshold"`
	// MinFoundRate alerts when fewer companies than this share get an email.
	MinFoundRate float64 `yaml:"min_found_rate" mapstructure:"min_found_rate"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONTACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.timeout", 5*time.Second)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("fetch.max_body_bytes", 512*1024)
	v.SetDefault("fetch.host_rps", 2.0)
	v.SetDefault("fetch.host_burst", 2)
	v.SetDefault("fetch.jina_fallback", true)
	v.SetDefault("fetch.exclude_paths", []string{"/blog/*", "/news/*", "/press/*", "/careers/*", "/cart/*", "/checkout/*"})
	v.SetDefault("probe.timeout", 4*time.Second)
	v.SetDefault("probe.accept_forbidden", true)
	v.SetDefault("domains.max_candidates", 0)
	v.SetDefault("resolve.strategy", "hybrid")
	v.SetDefault("resolve.strictness", "")
	v.SetDefault("batch.max_companies", 300)
	v.SetDefault("batch.deadline", 8*time.Minute)
	v.SetDefault("batch.delay", 500*time.Millisecond)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_companies", 50)
	v.SetDefault("monitoring.error_rate_threshold", 0.5)
	v.SetDefault("monitoring.min_found_rate", 0.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var validStrictness = map[string]bool{"": true, "lenient": true, "balanced": true, "strict": true}

// Validate checks the settings a command needs. mode is "run", "resolve"
// or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run", "resolve":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.MaxCompanies <= 0 {
			errs = append(errs, "server.max_companies must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxCompanies <= 0 {
		errs = append(errs, "batch.max_companies must be > 0")
	}
	if c.Batch.Deadline <= 0 {
		errs = append(errs, "batch.deadline must be > 0")
	}
	if c.Batch.Delay < 0 {
		errs = append(errs, "batch.delay must be >= 0")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 20 {
		errs = append(errs, "batch.concurrency must be between 1 and 20")
	}
	if c.Fetch.Timeout <= 0 || c.Probe.Timeout <= 0 {
		errs = append(errs, "fetch.timeout and probe.timeout must be > 0")
	}
	if c.Fetch.HostRPS < 0 {
		errs = append(errs, "fetch.host_rps must be >= 0")
	}
	if c.Domains.MaxCandidates < 0 || c.Domains.MaxCandidates > 12 {
		errs = append(errs, "domains.max_candidates must be between 0 and 12")
	}
	if !validStrictness[c.Resolve.Strictness] {
		errs = append(errs, fmt.Sprintf("resolve.strictness %q is not one of lenient, balanced, strict", c.Resolve.Strictness))
	}
	if c.Monitoring.ErrorRateThreshold < 0 || c.Monitoring.ErrorRateThreshold > 1 {
		errs = append(errs, "monitoring.error_rate_threshold must be between 0 and 1")
	}
	if c.Monitoring.MinFoundRate < 0 || c.Monitoring.MinFoundRate > 1 {
		errs = append(errs, "monitoring.min_found_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
