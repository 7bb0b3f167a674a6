// Package websearch gathers a small batch of readable web pages for a search query
package websearch

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/schema"
	"github.com/bububa/searchgpt/tools"
	"github.com/bububa/searchgpt/tools/webscraper"
)

// Searcher returns candidate URLs for a query in ranking order
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// Scraper fetches and extracts one page
type Scraper interface {
	Run(context.Context, *webscraper.Input, *webscraper.Output) error
}

// Input search request from the language model
type Input struct {
	// Query the search query
	Query string `json:"query" jsonschema:"title=query,description=The search query to look up on the web." validate:"required"`
}

func NewInput(query string) *Input {
	return &Input{
		Query: query,
	}
}

func (i Input) String() string {
	return schema.JSON(i)
}

// Item is one extracted page, its body is never empty
type Item = webscraper.Output

// Output is the evidence batch for a query, ordered by completion not by ranking
type Output struct {
	Query   string `json:"query"`
	Results []Item `json:"results"`
}

func (o Output) String() string {
	return schema.JSON(o)
}

// Sources returns the URLs of the pages in the batch
func (o Output) Sources() []string {
	ret := make([]string, 0, len(o.Results))
	for _, item := range o.Results {
		ret = append(ret, item.URL)
	}
	return ret
}

type Config struct {
	tools.Config
	searcher      Searcher
	scraper       Scraper
	quota         int
	concurrency   int
	maxCandidates int
	maxBodyTokens int
	counter       budget.TokenCounter
	logger        zerolog.Logger
	meter         *meter.Meter
}

// Gatherer searches the web and scrapes candidates concurrently until the quota of pages is met
type Gatherer struct {
	Config
}

var (
	_ tools.Tool[Input, Output] = (*Gatherer)(nil)
	_ tools.AnonymousTool       = (*Gatherer)(nil)
)

func New(searcher Searcher, opts ...Option) *Gatherer {
	ret := &Gatherer{
		Config: Config{
			searcher:      searcher,
			maxBodyTokens: DefaultMaxBodyTokens,
			logger:        zerolog.Nop(),
		},
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle(DefaultName)
	}
	if ret.Description() == "" {
		ret.SetDescription(DefaultDescription)
	}
	if ret.quota <= 0 {
		ret.quota = DefaultQuota
	}
	if ret.concurrency <= 0 {
		ret.concurrency = DefaultConcurrency
	}
	if ret.maxCandidates <= 0 {
		ret.maxCandidates = DefaultMaxCandidates
	}
	if ret.counter == nil {
		ret.counter = budget.WordCounter{}
	}
	if ret.scraper == nil {
		ret.scraper = webscraper.New(webscraper.WithLogger(ret.logger), webscraper.WithMeter(ret.meter))
	}
	return ret
}

// Parameters returns the JSON schema of Input
func (g *Gatherer) Parameters() json.Marshaler {
	return schema.Reflect[Input]()
}

// RunAnonymous decodes raw JSON arguments and runs the search
func (g *Gatherer) RunAnonymous(ctx context.Context, arguments string) (schema.Schema, error) {
	input := new(Input)
	if err := tools.DecodeArguments(arguments, input); err != nil {
		return nil, err
	}
	output := new(Output)
	if err := g.Run(ctx, input, output); err != nil {
		return nil, err
	}
	return output, nil
}

// Run gathers evidence for input.Query
func (g *Gatherer) Run(ctx context.Context, input *Input, output *Output) error {
	g.OnStart(ctx, g, input)
	ret, err := g.Gather(ctx, input.Query)
	if err != nil {
		g.OnError(ctx, g, input, err)
		return err
	}
	*output = *ret
	g.OnEnd(ctx, g, input, output)
	return nil
}

// Gather collects at most quota pages for query. A short or empty batch is not an error,
// only a context which is already done fails.
func (g *Gatherer) Gather(ctx context.Context, query string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := g.searcher.Search(ctx, query, g.maxCandidates)
	if err != nil {
		g.logger.Warn().Err(err).Str("query", query).Msg("search failed, continuing without candidates")
		g.meter.Incr(meter.EventSearchFailure)
		candidates = nil
	}
	candidates = dedupe(candidates)

	var (
		claimed = atomic.NewInt64(0)
		quota   = int64(g.quota)
		results = make(chan Item, g.quota)
		grp     errgroup.Group
	)
	grp.SetLimit(g.concurrency)
	for _, link := range candidates {
		if claimed.Load() >= quota || ctx.Err() != nil {
			break
		}
		grp.Go(func() error {
			g.collect(ctx, link, claimed, quota, results)
			return nil
		})
	}
	grp.Wait()
	close(results)

	ret := &Output{
		Query:   query,
		Results: make([]Item, 0, len(results)),
	}
	for item := range results {
		ret.Results = append(ret.Results, item)
	}
	g.logger.Info().Str("query", query).Int("candidates", len(candidates)).Int("results", len(ret.Results)).Msg("gathered evidence")
	return ret, nil
}

// collect scrapes one candidate and claims a quota slot for it.
// Nothing is fetched once the quota is met, a late result which loses the race is dropped.
func (g *Gatherer) collect(ctx context.Context, link string, claimed *atomic.Int64, quota int64, results chan<- Item) {
	if claimed.Load() >= quota {
		return
	}
	var item Item
	if err := g.scraper.Run(ctx, webscraper.NewInput(link), &item); err != nil {
		g.logger.Debug().Err(err).Str("url", link).Msg("skip candidate")
		return
	}
	if item.Body == "" {
		return
	}
	if g.maxBodyTokens > 0 {
		if item.Body = truncateTokens(item.Body, g.maxBodyTokens, g.counter); item.Body == "" {
			return
		}
	}
	for {
		n := claimed.Load()
		if n >= quota {
			return
		}
		if claimed.CompareAndSwap(n, n+1) {
			results <- item
			return
		}
	}
}

// truncateTokens cuts text to at most max tokens, dropping its tail
func truncateTokens(text string, max int, counter budget.TokenCounter) string {
	for n := counter.Count(text); n > max; n = counter.Count(text) {
		runes := []rune(text)
		keep := len(runes) * max / n
		if keep >= len(runes) {
			keep = len(runes) - 1
		}
		text = string(runes[:keep])
	}
	return text
}

func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	ret := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		ret = append(ret, link)
	}
	return ret
}
