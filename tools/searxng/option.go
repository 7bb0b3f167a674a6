package searxng

import (
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bububa/searchgpt/tools"
)

type Option func(*Config)

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.language = lang
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

// WithSafeSearch sets the searxng safesearch level, 0 off, 1 moderate, 2 strict
func WithSafeSearch(level int) Option {
	return func(c *Config) {
		c.safeSearch = &level
	}
}

// WithEngines restricts the search engines searxng queries
func WithEngines(engines ...string) Option {
	return func(c *Config) {
		c.engines = engines
	}
}

// WithRateLimit limits outgoing searches to r per second with the given burst
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Config) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}
