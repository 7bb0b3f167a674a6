package components

import (
	"context"
	"encoding/json"
)

// ChatProvider is a language model able to call tools and answer in a structured format
type ChatProvider interface {
	// Chat sends req to the model and fills resp
	Chat(ctx context.Context, req *ChatRequest, resp *LLMResponse) error
}

// ResponseFormat describes the structured answer the model must produce
type ResponseFormat struct {
	Name        string
	Description string
	Schema      json.Marshaler
}

// ChatRequest is a provider neutral chat completion request
type ChatRequest struct {
	// System is the system prompt, sent ahead of Messages
	System string
	// Messages is the conversation in chronological order
	Messages []Message
	// Tools the model may call
	Tools []ToolDefinition
	// ResponseFormat of the final answer, optional
	ResponseFormat *ResponseFormat
}

// LLMResponse provider chat response
type LLMResponse struct {
	ID           string      `json:"id,omitempty"`
	Role         MessageRole `json:"role,omitempty"`
	Model        string      `json:"model,omitempty"`
	Usage        *LLMUsage   `json:"usage,omitempty"`
	Timestamp    int64       `json:"ts,omitempty"`
	Content      string      `json:"content,omitempty"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// HasToolCalls reports whether the model requested a tool
func (r *LLMResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// LLMUsage token usage of one or more model calls
type LLMUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
}

// Merge adds v to u
func (u *LLMUsage) Merge(v *LLMUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

// TotalTokens returns input plus output tokens
func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}
