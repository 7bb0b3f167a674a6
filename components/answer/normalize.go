package answer

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/words"
	"github.com/microcosm-cc/bluemonday"
	"gitlab.com/golang-commonmark/markdown"
)

// MaxShortWords limits the short response
const MaxShortWords = 50

var (
	longPolicy  = newLongPolicy()
	plainPolicy = bluemonday.StrictPolicy()
	md          = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(false))

	markdownHints = regexp.MustCompile(`(?m)(\*\*[^*]+\*\*|\[[^\]]+\]\([^)]+\)|^#{1,6} |^\s*[-*] )`)
	paragraphEnds = regexp.MustCompile(`</(p|li|h[1-6])>\s*`)
	trailingBreak = regexp.MustCompile(`(?:\s*<br\s*/?>\s*)+$`)
)

func newLongPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("br", "b", "strong", "i", "em")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStyles("color").OnElements("a")
	p.AllowStandardURLs()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// Normalize restricts LongResponse to the allowed html subset and
// ShortResponse and Title to plain text, the short response capped at MaxShortWords.
func (a *Answer) Normalize() {
	a.LongResponse = NormalizeLong(a.LongResponse)
	a.ShortResponse = LimitWords(PlainText(a.ShortResponse), MaxShortWords)
	a.Title = PlainText(a.Title)
}

// NormalizeLong renders markdown looking text to html and sanitizes it
func NormalizeLong(text string) string {
	text = strings.TrimSpace(text)
	if markdownHints.MatchString(text) {
		text = md.RenderToString([]byte(text))
		text = paragraphEnds.ReplaceAllString(text, "<br>")
	}
	text = strings.ReplaceAll(text, "\n", "<br>")
	text = longPolicy.Sanitize(text)
	return strings.TrimSpace(trailingBreak.ReplaceAllString(text, ""))
}

// PlainText strips every tag
func PlainText(text string) string {
	text = plainPolicy.Sanitize(text)
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

// LimitWords truncates text after max words, punctuation and spacing are kept
func LimitWords(text string, max int) string {
	var (
		b     strings.Builder
		count int
	)
	for _, token := range words.SegmentAll([]byte(text)) {
		if isWord(token) {
			if count == max {
				break
			}
			count++
		}
		b.Write(token)
	}
	return strings.TrimSpace(b.String())
}

func isWord(token []byte) bool {
	for _, r := range string(token) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
