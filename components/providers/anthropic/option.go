package anthropic

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "claude-3-5-haiku-latest"
	// DefaultMaxTokens the messages API requires an explicit limit
	DefaultMaxTokens = 2048
)

type Option func(*Provider)

func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(p *Provider) {
		p.temperature = &temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(p *Provider) {
		p.maxTokens = maxTokens
	}
}
