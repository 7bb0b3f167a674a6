package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DateStrategy looks for a publication date in one kind of markup.
// It returns an empty string when its signal is absent.
type DateStrategy func(doc *goquery.Document) string

// DefaultDateStrategies in priority order, first non-empty result wins
var DefaultDateStrategies = []DateStrategy{
	TimeElementDate,
	MetaTagDate,
	ClassContainerDate,
}

// metaDateSelectors publish/update meta tags in preference order
var metaDateSelectors = []string{
	"meta[property='article:published_time']",
	"meta[name='article:published_time']",
	"meta[name='publish_date']",
	"meta[name='pubdate']",
	"meta[property='og:pubdate']",
	"meta[property='og:updated_time']",
}

// classDateSelectors known date containers in preference order
var classDateSelectors = []string{
	"span.date",
	"span.publish-date",
	"div.date",
	"div.publish-date",
}

// ExtractDate runs strategies in order and returns the first date found
func ExtractDate(doc *goquery.Document, strategies ...DateStrategy) string {
	for _, strategy := range strategies {
		if date := strategy(doc); date != "" {
			return date
		}
	}
	return ""
}

// TimeElementDate reads the first <time> element: its datetime attribute, else its text
func TimeElementDate(doc *goquery.Document) string {
	sel := doc.Find("time").First()
	if sel.Length() == 0 {
		return ""
	}
	if v, ok := sel.Attr("datetime"); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return normalizeSpace(sel.Text())
}

// MetaTagDate reads the content of known publish/update meta tags
func MetaTagDate(doc *goquery.Document) string {
	for _, selector := range metaDateSelectors {
		if v, ok := doc.Find(selector).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// ClassContainerDate reads the text of elements classed as dates
func ClassContainerDate(doc *goquery.Document) string {
	for _, selector := range classDateSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if v := normalizeSpace(sel.Text()); v != "" {
			return v
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
