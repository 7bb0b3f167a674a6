package providers

import (
	"testing"

	"github.com/bububa/searchgpt/components/providers/anthropic"
	"github.com/bububa/searchgpt/components/providers/openai"
)

func TestNew(t *testing.T) {
	p, err := New(Config{Provider: ProviderOpenAI, APIKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o, ok := p.(*openai.Provider); !ok || o.Model() != openai.DefaultModel {
		t.Errorf("expected openai provider with default model, got %T", p)
	}
	p, err = New(Config{Provider: ProviderAnthropic, APIKey: "key", Model: "claude-sonnet-4-0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, ok := p.(*anthropic.Provider); !ok || a.Model() != "claude-sonnet-4-0" {
		t.Errorf("expected anthropic provider, got %T", p)
	}
	if _, err := New(Config{Provider: "cohere"}); err == nil {
		t.Errorf("expected error for unknown provider")
	}
}
