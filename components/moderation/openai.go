package moderation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClassifier classifies text with the OpenAI moderation endpoint
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

var _ Classifier = (*OpenAIClassifier)(nil)

// NewOpenAIClassifier returns a classifier using model, omni-moderation-latest when empty
func NewOpenAIClassifier(client *openai.Client, model string) *OpenAIClassifier {
	if model == "" {
		model = openai.ModerationOmniLatest
	}
	return &OpenAIClassifier{
		client: client,
		model:  model,
	}
}

// Classify reports whether any moderation result is flagged
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (bool, error) {
	resp, err := c.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: c.model,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrService, err)
	}
	for _, result := range resp.Results {
		if result.Flagged {
			return true, nil
		}
	}
	return false, nil
}
