package agents

import (
	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/components/systemprompt"
	"github.com/bububa/searchgpt/tools"
)

type Option func(c *Config)

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

// WithBudgeter trims the conversation before every model call
func WithBudgeter(b *budget.Budgeter) Option {
	return func(c *Config) {
		c.budgeter = b
	}
}

// WithTools registers tools the model may call
func WithTools(list ...tools.AnonymousTool) Option {
	return func(c *Config) {
		c.tools = append(c.tools, list...)
	}
}

// WithMaxRounds limits the number of model calls per request
func WithMaxRounds(n int) Option {
	return func(c *Config) {
		c.maxRounds = n
	}
}

func WithMeter(m *meter.Meter) Option {
	return func(c *Config) {
		c.meter = m
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}
