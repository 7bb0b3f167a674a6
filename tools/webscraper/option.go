package webscraper

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/document"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/tools"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// DefaultTimeout per attempt
	DefaultTimeout          = 10 * time.Second
	DefaultMaxContentLength = 1_000_000
	DefaultMaxAttempts      = 3
	// DefaultBackoffUnit sleep before retry n is 2^n units
	DefaultBackoffUnit = time.Second
)

type Option func(*Config)

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.userAgent = ua
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

func WithMaxContentLength(l int64) Option {
	return func(c *Config) {
		c.maxContentLength = l
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.maxAttempts = n
	}
}

func WithBackoffUnit(d time.Duration) Option {
	return func(c *Config) {
		c.backoffUnit = d
	}
}

func WithExtractor(e *document.Extractor) Option {
	return func(c *Config) {
		c.extractor = e
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
