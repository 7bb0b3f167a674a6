package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/tools"
	"github.com/bububa/searchgpt/tools/webscraper"
)

type fakeSearcher struct {
	urls []string
	err  error
}

func (s fakeSearcher) Search(_ context.Context, _ string, maxResults int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.urls) > maxResults {
		return s.urls[:maxResults], nil
	}
	return s.urls, nil
}

// fakeScraper succeeds for every url unless it is listed in failing
type fakeScraper struct {
	calls   atomic.Int32
	mu      sync.Mutex
	visited map[string]int
	failing map[string]bool
	before  func()
}

func (s *fakeScraper) Run(_ context.Context, input *webscraper.Input, output *webscraper.Output) error {
	s.calls.Add(1)
	s.mu.Lock()
	if s.visited == nil {
		s.visited = make(map[string]int)
	}
	s.visited[input.URL]++
	s.mu.Unlock()
	if s.before != nil {
		s.before()
	}
	if s.failing[input.URL] {
		return webscraper.ErrFetchFailed
	}
	output.URL = input.URL
	output.Title = "title " + input.URL
	output.Body = "body " + input.URL
	return nil
}

func candidateURLs(n int) []string {
	ret := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, fmt.Sprintf("https://example.com/%d", i))
	}
	return ret
}

func TestGatherQuota(t *testing.T) {
	scraper := new(fakeScraper)
	g := New(fakeSearcher{urls: candidateURLs(50)}, WithScraper(scraper))
	out, err := g.Gather(context.Background(), "vijesti")
	require.NoError(t, err)
	require.Len(t, out.Results, DefaultQuota)
	require.Equal(t, "vijesti", out.Query)
	// only workers admitted before the quota was met may touch the network
	require.LessOrEqual(t, int(scraper.calls.Load()), DefaultQuota+DefaultConcurrency-1)
	for _, item := range out.Results {
		require.NotEmpty(t, item.Body)
	}
	require.Len(t, out.Sources(), DefaultQuota)
}

func TestGatherRacingWorkers(t *testing.T) {
	var (
		arrived atomic.Int32
		release = make(chan struct{})
	)
	scraper := &fakeScraper{
		before: func() {
			n := arrived.Add(1)
			if n == DefaultConcurrency {
				close(release)
			}
			if n <= DefaultConcurrency {
				<-release
			}
		},
	}
	for i := 0; i < 20; i++ {
		g := New(fakeSearcher{urls: candidateURLs(50)}, WithScraper(scraper))
		arrived.Store(0)
		release = make(chan struct{})
		out, err := g.Gather(context.Background(), "utrka")
		require.NoError(t, err)
		require.Len(t, out.Results, DefaultQuota)
	}
}

func TestGatherShortBatch(t *testing.T) {
	urls := candidateURLs(4)
	scraper := &fakeScraper{failing: map[string]bool{urls[0]: true, urls[2]: true}}
	g := New(fakeSearcher{urls: urls}, WithScraper(scraper))
	out, err := g.Gather(context.Background(), "kratko")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{urls[1], urls[3]}, out.Sources())
	require.EqualValues(t, 4, scraper.calls.Load())
}

func TestGatherSearchFailureDegrades(t *testing.T) {
	scraper := new(fakeScraper)
	g := New(fakeSearcher{err: errors.New("searxng unavailable")}, WithScraper(scraper))
	out, err := g.Gather(context.Background(), "bilo sta")
	require.NoError(t, err)
	require.Empty(t, out.Results)
	require.Zero(t, scraper.calls.Load())
}

func TestGatherDedupe(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example", "https://a.example", "https://b.example"}
	scraper := new(fakeScraper)
	g := New(fakeSearcher{urls: urls}, WithScraper(scraper), WithQuota(5))
	out, err := g.Gather(context.Background(), "duplikati")
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	for _, link := range urls {
		require.Equal(t, 1, scraper.visited[link])
	}
}

func TestGatherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(fakeSearcher{urls: candidateURLs(3)}, WithScraper(new(fakeScraper))).Gather(ctx, "q")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunAnonymous(t *testing.T) {
	var started, ended bool
	g := New(
		fakeSearcher{urls: candidateURLs(2)},
		WithScraper(new(fakeScraper)),
		WithToolOptions(
			tools.WithStartHook(func(context.Context, tools.ITool, any) { started = true }),
			tools.WithEndHook(func(context.Context, tools.ITool, any, any) { ended = true }),
		),
	)
	ret, err := g.RunAnonymous(context.Background(), `{"query":"sarajevo"}`)
	require.NoError(t, err)
	require.True(t, started)
	require.True(t, ended)
	out, ok := ret.(*Output)
	require.True(t, ok)
	require.Len(t, out.Results, 2)
	require.True(t, strings.Contains(ret.String(), `"link":"https://example.com/0"`) || strings.Contains(ret.String(), `"link":"https://example.com/1"`))

	_, err = g.RunAnonymous(context.Background(), `{"search":"sarajevo"}`)
	require.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func TestDefinition(t *testing.T) {
	def := tools.Definition(New(fakeSearcher{}))
	require.Equal(t, DefaultName, def.Name)
	bs, err := json.Marshal(def.Parameters)
	require.NoError(t, err)
	var params struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(bs, &params))
	require.Equal(t, "object", params.Type)
	require.Contains(t, params.Properties, "query")
	require.Equal(t, []string{"query"}, params.Required)
}

// longScraper returns pages of the given number of words
type longScraper int

func (s longScraper) Run(_ context.Context, input *webscraper.Input, output *webscraper.Output) error {
	output.URL = input.URL
	output.Body = strings.TrimSpace(strings.Repeat("rijec ", int(s)))
	return nil
}

func TestGatherMaxBodyTokens(t *testing.T) {
	counter := budget.WordCounter{}
	g := New(fakeSearcher{urls: candidateURLs(10)}, WithScraper(longScraper(50_000)), WithMaxBodyTokens(1000, counter))
	out, err := g.Gather(context.Background(), "dugo")
	require.NoError(t, err)
	require.Len(t, out.Results, DefaultQuota)
	for _, item := range out.Results {
		n := counter.Count(item.Body)
		require.LessOrEqual(t, n, 1000)
		require.Greater(t, n, 900)
		require.True(t, strings.HasPrefix(item.Body, "rijec rijec"))
	}
}

func TestGatherDefaultBodyCap(t *testing.T) {
	g := New(fakeSearcher{urls: candidateURLs(10)}, WithScraper(longScraper(50_000)))
	out, err := g.Gather(context.Background(), "dugo")
	require.NoError(t, err)
	total := 0
	for _, item := range out.Results {
		total += budget.WordCounter{}.Count(item.Body)
	}
	require.LessOrEqual(t, total, DefaultQuota*DefaultMaxBodyTokens)
}

func TestGatherBodyCapDisabled(t *testing.T) {
	g := New(fakeSearcher{urls: candidateURLs(1)}, WithScraper(longScraper(30_000)), WithMaxBodyTokens(0, nil))
	out, err := g.Gather(context.Background(), "dugo")
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.Equal(t, 30_000, budget.WordCounter{}.Count(out.Results[0].Body))
}

func TestTruncateTokens(t *testing.T) {
	counter := budget.WordCounter{}
	require.Equal(t, "a b c", truncateTokens("a b c", 3, counter))
	got := truncateTokens("jedan dva tri četiri pet šest", 2, counter)
	require.LessOrEqual(t, counter.Count(got), 2)
	require.True(t, strings.HasPrefix(got, "jedan"))
}
