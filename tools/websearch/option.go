package websearch

import (
	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/tools"
)

const (
	DefaultName        = "search_google"
	DefaultDescription = "Search the web for up to date information about a topic."
	// DefaultQuota number of pages collected per search
	DefaultQuota = 3
	// DefaultConcurrency number of pages fetched in parallel
	DefaultConcurrency = 5
	// DefaultMaxCandidates number of search results requested
	DefaultMaxCandidates = 50
	// DefaultMaxBodyTokens cap of one page body, a full batch stays under 70000 tokens
	DefaultMaxBodyTokens = 20000
)

type Option func(*Config)

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

func WithScraper(s Scraper) Option {
	return func(c *Config) {
		c.scraper = s
	}
}

func WithQuota(n int) Option {
	return func(c *Config) {
		c.quota = n
	}
}

func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.concurrency = n
	}
}

func WithMaxCandidates(n int) Option {
	return func(c *Config) {
		c.maxCandidates = n
	}
}

// WithMaxBodyTokens truncates every page body to n tokens counted by counter, zero disables the cap
func WithMaxBodyTokens(n int, counter budget.TokenCounter) Option {
	return func(c *Config) {
		c.maxBodyTokens = n
		c.counter = counter
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

func WithMeter(m *meter.Meter) Option {
	return func(c *Config) {
		c.meter = m
	}
}
