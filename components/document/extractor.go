package document

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelectors are removed before main content extraction; images go too
var boilerplateSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "header", "footer", "aside", "form", "iframe",
	"img", "picture", "svg", "video", "audio",
	"[role='navigation']", "[role='banner']", "[role='contentinfo']", "[role='complementary']",
	".sidebar", "#sidebar", ".advertisement", ".ads", ".ad", ".cookie-banner", ".cookie-notice",
}

// contentCandidates main content containers, most specific first
var contentCandidates = []string{
	"main",
	"#content, #main",
	".content, .main",
	"article",
	"body",
}

// Extractor derives title, body and publication date from HTML
type Extractor struct {
	dateStrategies []DateStrategy
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithDateStrategies replaces DefaultDateStrategies
func WithDateStrategies(strategies ...DateStrategy) ExtractorOption {
	return func(e *Extractor) {
		e.dateStrategies = strategies
	}
}

// NewExtractor returns a new Extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	ret := new(Extractor)
	for _, opt := range opts {
		opt(ret)
	}
	if ret.dateStrategies == nil {
		ret.dateStrategies = DefaultDateStrategies
	}
	return ret
}

// Extract parses raw HTML fetched from pageURL into a Page.
// It returns ErrEmptyBody when the main content yields no text.
func (e *Extractor) Extract(ctx context.Context, raw []byte, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("document: parse html: %w", err)
	}
	page := new(Page)
	// dates often live in headers, look before stripping boilerplate
	page.PublishedDate = ExtractDate(doc, e.dateStrategies...)
	page.Title = extractTitle(doc)

	mainContent := extractMainContent(doc)
	var opts []converter.ConvertOptionFunc
	if parsedURL, err := url.Parse(pageURL); err == nil && parsedURL.Host != "" {
		opts = append(opts, converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)))
	}
	buf := new(bytes.Buffer)
	if err := NewHTML2MDParser(opts...).Parse(ctx, bytes.NewReader([]byte(mainContent)), buf); err != nil {
		return nil, fmt.Errorf("document: convert html: %w", err)
	}
	page.Body = buf.String()
	if page.Body == "" {
		return nil, ErrEmptyBody
	}
	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	if title := normalizeSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if title, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if title = normalizeSpace(title); title != "" {
			return title
		}
	}
	return normalizeSpace(doc.Find("h1").First().Text())
}

// extractMainContent strips boilerplate and returns the inner html of the main content container
func extractMainContent(doc *goquery.Document) string {
	doc.Find(strings.Join(boilerplateSelectors, ", ")).Remove()
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		if txt, err := sel.Html(); err == nil {
			return txt
		}
	}
	return ""
}
