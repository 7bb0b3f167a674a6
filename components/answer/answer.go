// Package answer defines the structured final answer and its normalization.
package answer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/schema"
)

const (
	// RefusalMessage is returned in every field for flagged input
	RefusalMessage = "Illegal content detected."
	// SchemaName of the structured response format
	SchemaName        = "Response"
	SchemaDescription = "Answers of the prompt with given information"
)

// ErrMalformed is returned when model output holds no answer object
var ErrMalformed = errors.New("answer: malformed model output")

// Answer is the final structured answer of the language model
type Answer struct {
	// LongResponse detailed answer, html formatted with br, b, em and a tags only
	LongResponse string `json:"longresponse" jsonschema:"description=Detailed answer of at most 200 words formatted with HTML: <br> for new lines <b> bold <em> italics and <a> links to the sources. Never markdown."`
	// ShortResponse plain text summary, at most 50 words
	ShortResponse string `json:"shortresponse" jsonschema:"description=Plain text summary of at most 50 words without any HTML."`
	// Title short title of the answer
	Title string `json:"title" jsonschema:"description=Short plain text title of the answer."`
}

func (a Answer) String() string {
	return schema.JSON(a)
}

// Refusal is the answer for flagged input
func Refusal() *Answer {
	return &Answer{
		LongResponse:  RefusalMessage,
		ShortResponse: RefusalMessage,
		Title:         RefusalMessage,
	}
}

// Schema returns the strict JSON schema of Answer
func Schema() *jsonschema.Schema {
	return schema.Reflect[Answer]()
}

// ResponseFormat asks the model for an Answer
func ResponseFormat() *components.ResponseFormat {
	return &components.ResponseFormat{
		Name:        SchemaName,
		Description: SchemaDescription,
		Schema:      Schema(),
	}
}

// Parse decodes the first JSON object found in content, text around it is ignored
func Parse(content string) (*Answer, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return nil, ErrMalformed
	}
	ret := new(Answer)
	if err := json.Unmarshal([]byte(content[start:end+1]), ret); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if ret.LongResponse == "" && ret.ShortResponse == "" && ret.Title == "" {
		return nil, ErrMalformed
	}
	return ret, nil
}
