// Package config loads the searchgpt service configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bububa/searchgpt/agents"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/components/providers"
	"github.com/bububa/searchgpt/logger"
	"github.com/bububa/searchgpt/tools/webscraper"
	"github.com/bububa/searchgpt/tools/websearch"
)

// Environment variables overriding the configuration file
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "OPENAI_API_BASE_URL"
	EnvOpenAIModel    = "OPENAI_MODEL"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvSearxngURL     = "SEARXNG_URL"
	EnvProvider       = "SEARCHGPT_PROVIDER"
	EnvAddr           = "SEARCHGPT_ADDR"
	DefaultAddr       = ":8468"
	DefaultSearxngURL = "http://localhost:8080"
	// DefaultContextTokens conversation budget sent to the model
	DefaultContextTokens = 100_000
)

// Config is the service configuration
type Config struct {
	// Addr the http server listens on
	Addr       string           `yaml:"addr" validate:"required"`
	LLM        providers.Config `yaml:"llm"`
	Moderation Moderation       `yaml:"moderation"`
	Log        logger.Config    `yaml:"log"`
	Search     Search           `yaml:"search"`
	Fetch      Fetch            `yaml:"fetch"`
	Budget     Budget           `yaml:"budget"`
	Rates      meter.Rates      `yaml:"rates"`
	// RequestTimeout deadline of a whole request
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	// MaxRounds model calls allowed per request
	MaxRounds int `yaml:"max_rounds" validate:"gt=0"`
}

// Moderation configures the OpenAI moderation gate
type Moderation struct {
	Disabled bool   `yaml:"disabled"`
	APIKey   string `yaml:"api_key" validate:"required_unless=Disabled true"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Model    string `yaml:"model"`
}

// Search configures SearxNG and the evidence gatherer
type Search struct {
	BaseURL    string   `yaml:"base_url" validate:"required,url"`
	Language   string   `yaml:"language"`
	Engines    []string `yaml:"engines"`
	SafeSearch int      `yaml:"safe_search" validate:"gte=0,lte=2"`
	MaxResults int      `yaml:"max_results" validate:"gt=0"`
	// RateLimit searches per second, unlimited when zero
	RateLimit   float64 `yaml:"rate_limit" validate:"gte=0"`
	Burst       int     `yaml:"burst" validate:"gte=0"`
	Quota       int     `yaml:"quota" validate:"gt=0"`
	Concurrency int     `yaml:"concurrency" validate:"gt=0"`
	// MaxBodyTokens cap of one page body, derived from the budget when zero
	MaxBodyTokens int `yaml:"max_body_tokens" validate:"gte=0"`
}

// Fetch configures the page fetcher
type Fetch struct {
	UserAgent        string        `yaml:"user_agent"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxContentLength int64         `yaml:"max_content_length" validate:"gt=0"`
	MaxAttempts      int           `yaml:"max_attempts" validate:"gt=0"`
}

// Budget configures the conversation token budget
type Budget struct {
	MaxTokens int `yaml:"max_tokens" validate:"gte=0"`
	// Encoding model name used to pick the tiktoken encoding, the chat model when empty
	Encoding string `yaml:"encoding"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Addr: DefaultAddr,
		LLM: providers.Config{
			Provider: providers.ProviderOpenAI,
		},
		Search: Search{
			BaseURL:     DefaultSearxngURL,
			SafeSearch:  1,
			MaxResults:  websearch.DefaultMaxCandidates,
			Quota:       websearch.DefaultQuota,
			Concurrency: websearch.DefaultConcurrency,
		},
		Fetch: Fetch{
			UserAgent:        webscraper.DefaultUserAgent,
			Timeout:          webscraper.DefaultTimeout,
			MaxContentLength: webscraper.DefaultMaxContentLength,
			MaxAttempts:      webscraper.DefaultMaxAttempts,
		},
		Budget: Budget{
			MaxTokens: DefaultContextTokens,
		},
		Rates:          meter.DefaultRates,
		RequestTimeout: agents.DefaultRequestTimeout,
		MaxRounds:      agents.DefaultMaxRounds,
	}
}

// Load reads the yaml file at path over the defaults, then applies the
// environment, a .env file in the working directory included. An empty path
// or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(bs, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProvider); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvSearxngURL); v != "" {
		c.Search.BaseURL = v
	}
	openAIKey := os.Getenv(EnvOpenAIKey)
	openAIBaseURL := os.Getenv(EnvOpenAIBaseURL)
	if openAIKey != "" && c.Moderation.APIKey == "" {
		c.Moderation.APIKey = openAIKey
	}
	if openAIBaseURL != "" && c.Moderation.BaseURL == "" {
		c.Moderation.BaseURL = openAIBaseURL
	}
	switch c.LLM.Provider {
	case providers.ProviderOpenAI:
		if openAIKey != "" {
			c.LLM.APIKey = openAIKey
		}
		if openAIBaseURL != "" {
			c.LLM.BaseURL = openAIBaseURL
		}
		if v := os.Getenv(EnvOpenAIModel); v != "" {
			c.LLM.Model = v
		}
	case providers.ProviderAnthropic:
		if v := os.Getenv(EnvAnthropicKey); v != "" {
			c.LLM.APIKey = v
		}
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BodyTokens returns the token cap of one evidence page. Unless configured,
// a full batch takes at most half of the conversation budget.
func (c *Config) BodyTokens() int {
	if c.Search.MaxBodyTokens > 0 {
		return c.Search.MaxBodyTokens
	}
	if c.Budget.MaxTokens > 0 {
		return c.Budget.MaxTokens / (2 * c.Search.Quota)
	}
	return websearch.DefaultMaxBodyTokens
}

// EncodingModel returns the model name used to count tokens
func (c *Config) EncodingModel() string {
	if c.Budget.Encoding != "" {
		return c.Budget.Encoding
	}
	return c.LLM.Model
}
