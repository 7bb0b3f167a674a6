package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bububa/searchgpt/schema"
	"github.com/bububa/searchgpt/tools"
)

// ErrSearchFailed wraps every failed searxng query
var ErrSearchFailed = errors.New("searxng: search failed")

// DefaultSafeSearch moderate filtering
const DefaultSafeSearch = 1

// skippedURL results which are never returned
var skippedURL = regexp.MustCompile(`^https://(?:old\.|www\.)?reddit\.com`)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
// Returns a list of search results with a short description or content snippet and URLs for further exploration
type Input struct {
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries." validate:"required,min=1"`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

func (s Input) String() string {
	return schema.JSON(s)
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query,omitempty" jsonschema:"title=query,description=The query used to obtain this search result"`
	// Category of the search result
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=The category of the search result"`
	// Metadata additional metadata, searxng puts dates here for some engines
	Metadata string `json:"metadata,omitempty" jsonschema:"title=metadata,description=Additional metadata of the search result"`
	// PublishedDate The published date of the search result
	PublishedDate string `json:"publishedDate,omitempty" jsonschema:"title=published_date,description=The published date of the search result"`
}

func (s SearchResultItem) String() string {
	return schema.JSON(s)
}

// SearchResponse represents the entire response from the local search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	// Results List of search result items
	Results []SearchResultItem `json:"results,omitempty" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search results."`
}

func (s Output) String() string {
	return schema.JSON(s)
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	maxResults int
	safeSearch *int
	engines    []string
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     zerolog.Logger
}

// SearxngSearch is a tool for performing searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	Config
}

var _ tools.Tool[Input, Output] = (*SearxngSearch)(nil)

func New(opts ...Option) *SearxngSearch {
	ret := &SearxngSearch{
		Config: Config{
			logger: zerolog.Nop(),
		},
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxngSearchTool")
	}
	if ret.maxResults <= 0 {
		ret.maxResults = 10
	}
	if ret.safeSearch == nil {
		level := DefaultSafeSearch
		ret.safeSearch = &level
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	return ret
}

// Search returns up to maxResults result URLs for query in searxng ranking order
func (t *SearxngSearch) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	items, err := t.fetchSearchResults(ctx, query, EmptyCategory)
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, min(maxResults, len(items)))
	for _, item := range items {
		if len(ret) >= maxResults {
			break
		}
		if item.URL == "" || skippedURL.MatchString(item.URL) {
			continue
		}
		ret = append(ret, item.URL)
	}
	t.logger.Debug().Str("query", query).Int("results", len(ret)).Msg("searxng search")
	return ret, nil
}

// Run Runs the SearxNGTool synchronously with the given parameters
func (t *SearxngSearch) Run(ctx context.Context, input *Input, output *Output) error {
	t.OnStart(ctx, t, input)
	category := input.Category
	if category == EmptyCategory {
		category = GeneralCategory
	}
	seen := make(map[string]struct{})
	results := make([]SearchResultItem, 0, t.maxResults)
	for _, query := range input.Queries {
		items, err := t.fetchSearchResults(ctx, query, category)
		if err != nil {
			t.OnError(ctx, t, input, err)
			return err
		}
		for _, item := range items {
			if item.URL == "" || item.Title == "" || item.Content == "" || skippedURL.MatchString(item.URL) {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			results = append(results, item)
		}
	}
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	output.Results = results
	output.Category = category
	t.OnEnd(ctx, t, input, output)
	return nil
}

// fetchSearchResults queries the local search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
		}
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", strconv.Itoa(*t.safeSearch))
	values.Set("format", "json")
	if len(t.engines) > 0 {
		values.Set("engines", strings.Join(t.engines, ","))
	}
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != EmptyCategory {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: non-200 response %d", ErrSearchFailed, httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}
	return searchResponse.Results, nil
}
