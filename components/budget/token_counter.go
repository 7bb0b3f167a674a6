package budget

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter defines the interface for counting tokens in a string.
type TokenCounter interface {
	// Count returns the number of tokens in the given text
	Count(text string) int
}

// WordCounter approximates tokens by splitting on whitespace.
type WordCounter struct{}

// Count returns the number of words in the text, using whitespace as a delimiter.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts tokens with the tiktoken encoding of an OpenAI model.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// DefaultEncoding is used when the model is unknown to tiktoken
const DefaultEncoding = "cl100k_base"

// NewTikTokenCounter creates a counter for the given model, falling back to DefaultEncoding
func NewTikTokenCounter(model string) (*TikTokenCounter, error) {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if tke, err = tiktoken.GetEncoding(DefaultEncoding); err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the exact number of tokens in the text
func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}
