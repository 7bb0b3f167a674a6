// Package providers builds the language model chat providers.
package providers

import (
	"fmt"

	anthropicSDK "github.com/liushuangls/go-anthropic/v2"
	openaiSDK "github.com/sashabaranov/go-openai"

	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/components/providers/anthropic"
	"github.com/bububa/searchgpt/components/providers/openai"
)

type Provider = string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

var (
	FromOpenAI    = openai.New
	FromAnthropic = anthropic.New
)

// Config selects and configures a chat provider
type Config struct {
	Provider    Provider `yaml:"provider" validate:"required,oneof=openai anthropic"`
	APIKey      string   `yaml:"api_key" validate:"required"`
	BaseURL     string   `yaml:"base_url" validate:"omitempty,url"`
	Model       string   `yaml:"model"`
	Temperature float32  `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int      `yaml:"max_tokens" validate:"gte=0"`
}

// NewOpenAIClient returns an OpenAI API client, baseURL overrides the default endpoint when set
func NewOpenAIClient(apiKey string, baseURL string) *openaiSDK.Client {
	cfg := openaiSDK.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openaiSDK.NewClientWithConfig(cfg)
}

// New returns the chat provider described by cfg
func New(cfg Config) (components.ChatProvider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return FromOpenAI(
			NewOpenAIClient(cfg.APIKey, cfg.BaseURL),
			openai.WithModel(cfg.Model),
			openai.WithTemperature(cfg.Temperature),
			openai.WithMaxTokens(cfg.MaxTokens),
		), nil
	case ProviderAnthropic:
		opts := make([]anthropicSDK.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicSDK.WithBaseURL(cfg.BaseURL))
		}
		providerOpts := []anthropic.Option{
			anthropic.WithModel(cfg.Model),
			anthropic.WithMaxTokens(cfg.MaxTokens),
		}
		if cfg.Temperature > 0 {
			providerOpts = append(providerOpts, anthropic.WithTemperature(cfg.Temperature))
		}
		return FromAnthropic(anthropicSDK.NewClient(cfg.APIKey, opts...), providerOpts...), nil
	default:
		return nil, fmt.Errorf("providers: unknown provider %q", cfg.Provider)
	}
}
