package document

import (
	"errors"

	"github.com/bububa/searchgpt/schema"
)

// ErrEmptyBody is returned when no body text could be derived from a page
var ErrEmptyBody = errors.New("document: extracted body is empty")

// Page is the readable content of a fetched web page
type Page struct {
	// Title of the page, empty when absent
	Title string `json:"title,omitempty"`
	// Body plain text of the main content, hyperlinks kept as markdown links
	Body string `json:"body"`
	// PublishedDate as found on the page, empty when absent
	PublishedDate string `json:"date,omitempty"`
}

func (p Page) String() string {
	return schema.JSON(p)
}
