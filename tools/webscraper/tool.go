package webscraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/document"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/schema"
	"github.com/bububa/searchgpt/tools"
)

var (
	// ErrFetchFailed wraps every fetch failure, the caller skips the URL
	ErrFetchFailed = errors.New("webscraper: fetch failed")
	// ErrHTTPStatus is returned for status codes >= 400, never retried
	ErrHTTPStatus = errors.New("webscraper: bad http status")
	// ErrUnsupportedContent is returned for non text responses
	ErrUnsupportedContent = errors.New("webscraper: unsupported content")
)

// Input schema for the WebpageScraperTool.
type Input struct {
	// URL of the webpage to scrape, https:// is assumed when the scheme is missing.
	URL string `json:"url" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required"`
}

func NewInput(link string) *Input {
	return &Input{
		URL: link,
	}
}

func (i Input) String() string {
	return schema.JSON(i)
}

// Output is the readable content of one scraped page
type Output struct {
	// Title of the webpage
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Body main content as plain text with markdown links
	Body string `json:"body" jsonschema:"title=body,description=The main content of the webpage."`
	// PublishedDate publication date as found on the page
	PublishedDate string `json:"date,omitempty" jsonschema:"title=date,description=The publication date of the webpage."`
	// URL the page was fetched from
	URL string `json:"link" jsonschema:"title=link,description=The URL of the webpage."`
}

func (o Output) String() string {
	return schema.JSON(o)
}

type Config struct {
	tools.Config
	// userAgent User agent string to use for requests.
	userAgent string
	// timeout for a single attempt
	timeout time.Duration
	// maxContentLength Maximum content length in bytes to process.
	maxContentLength int64
	maxAttempts      int
	backoffUnit      time.Duration
	httpClient       *http.Client
	extractor        *document.Extractor
	logger           zerolog.Logger
	meter            *meter.Meter
}

// Webscraper fetches a single web page and extracts its readable content
type Webscraper struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Webscraper)(nil)

func New(opts ...Option) *Webscraper {
	ret := &Webscraper{
		Config: Config{
			logger: zerolog.Nop(),
		},
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("WebscraperTool")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout <= 0 {
		ret.timeout = DefaultTimeout
	}
	if ret.maxContentLength <= 0 {
		ret.maxContentLength = DefaultMaxContentLength
	}
	if ret.maxAttempts <= 0 {
		ret.maxAttempts = DefaultMaxAttempts
	}
	if ret.backoffUnit <= 0 {
		ret.backoffUnit = DefaultBackoffUnit
	}
	if ret.httpClient == nil {
		ret.httpClient = new(http.Client)
	}
	if ret.extractor == nil {
		ret.extractor = document.NewExtractor()
	}
	return ret
}

// Run fetches input.URL and extracts its title, body and publication date
func (t *Webscraper) Run(ctx context.Context, input *Input, output *Output) error {
	t.OnStart(ctx, t, input)
	link := NormalizeURL(input.URL)
	raw, err := t.Fetch(ctx, link)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return err
	}
	page, err := t.extractor.Extract(ctx, raw, link)
	if err != nil {
		t.logger.Debug().Err(err).Str("url", link).Msg("extract page")
		t.OnError(ctx, t, input, err)
		return err
	}
	output.Title = page.Title
	output.Body = page.Body
	output.PublishedDate = page.PublishedDate
	output.URL = link
	t.OnEnd(ctx, t, input, output)
	return nil
}

// NormalizeURL prefixes scheme-less URLs with https://
func NormalizeURL(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	default:
		return "https://" + link
	}
}

// Fetch downloads a page, retrying transport errors with exponential backoff.
// Every returned error wraps ErrFetchFailed.
func (t *Webscraper) Fetch(ctx context.Context, link string) ([]byte, error) {
	link = NormalizeURL(link)
	var lastErr error
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := t.sleep(ctx, attempt-1); err != nil {
				lastErr = err
				break
			}
		}
		body, retry, err := t.fetch(ctx, link)
		if err == nil {
			return body, nil
		}
		lastErr = err
		t.logger.Debug().Err(err).Str("url", link).Int("attempt", attempt).Bool("retry", retry).Msg("fetch page")
		if !retry {
			break
		}
	}
	t.meter.Incr(meter.EventFetchFailure)
	return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, link, lastErr)
}

// sleep waits 2^attempt backoff units or until ctx is done
func (t *Webscraper) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(t.backoffUnit << attempt)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetch performs one attempt, retry reports whether the failure is transient
func (t *Webscraper) fetch(ctx context.Context, link string) (body []byte, retry bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, link, nil)
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, false, fmt.Errorf("%w: %d", ErrHTTPStatus, httpResp.StatusCode)
	}
	body, err = io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength))
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	if mtype := mimetype.Detect(body); !isText(mtype) {
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedContent, mtype.String())
	}
	return body, false, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
