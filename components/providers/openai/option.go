package openai

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

type Option func(*Provider)

func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(p *Provider) {
		p.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(p *Provider) {
		p.maxTokens = maxTokens
	}
}
