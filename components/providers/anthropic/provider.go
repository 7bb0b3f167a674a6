package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/searchgpt/components"
)

// Provider is a components.ChatProvider backed by the Anthropic messages API.
// The messages API has no structured response format, the answer schema is
// appended to the system prompt instead.
type Provider struct {
	*anthropic.Client
	model       string
	temperature *float32
	maxTokens   int
}

var _ components.ChatProvider = (*Provider)(nil)

func New(client *anthropic.Client, opts ...Option) *Provider {
	ret := &Provider{
		Client: client,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.model == "" {
		ret.model = DefaultModel
	}
	if ret.maxTokens <= 0 {
		ret.maxTokens = DefaultMaxTokens
	}
	return ret
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) Chat(ctx context.Context, req *components.ChatRequest, resp *components.LLMResponse) error {
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(p.model),
		System:      SystemPrompt(req.System, req.ResponseFormat),
		Messages:    ToAnthropicMessages(req.Messages),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	for _, def := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, anthropic.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		})
	}
	res, err := p.CreateMessages(ctx, chatReq)
	if err != nil {
		return err
	}
	FromAnthropic(&res, resp)
	return nil
}

// SystemPrompt appends the response format instructions to system
func SystemPrompt(system string, format *components.ResponseFormat) string {
	if format == nil || format.Schema == nil {
		return system
	}
	bs, err := format.Schema.MarshalJSON()
	if err != nil {
		return system
	}
	parts := make([]string, 0, 3)
	if system != "" {
		parts = append(parts, system)
	}
	if format.Description != "" {
		parts = append(parts, format.Description+".")
	}
	parts = append(parts, "When you answer without calling a tool, reply with a single JSON object and nothing else. The object must validate against this JSON schema:\n"+string(bs))
	return strings.Join(parts, "\n\n")
}

// ToAnthropicMessages converts a conversation to alternating user and assistant turns.
// Tool results travel in user turns. Leading assistant turns are dropped and
// results whose tool use is not part of the conversation become plain text.
func ToAnthropicMessages(messages []components.Message) []anthropic.Message {
	ret := make([]anthropic.Message, 0, len(messages))
	calls := make(map[string]struct{})
	for _, msg := range messages {
		var (
			role    anthropic.ChatRole
			content []anthropic.MessageContent
		)
		switch msg.Role() {
		case components.AssistantRole:
			if len(ret) == 0 {
				continue
			}
			role = anthropic.RoleAssistant
			if text := msg.Text(); text != "" {
				content = append(content, anthropic.NewTextMessageContent(text))
			}
			for _, call := range msg.ToolCalls() {
				calls[call.ID] = struct{}{}
				args := call.Arguments
				if args == "" {
					args = "{}"
				}
				content = append(content, anthropic.NewToolUseMessageContent(call.ID, call.Name, json.RawMessage(args)))
			}
		case components.ToolRole:
			role = anthropic.RoleUser
			if _, ok := calls[msg.ToolCallID()]; ok {
				content = append(content, anthropic.NewToolResultMessageContent(msg.ToolCallID(), msg.Text(), false))
			} else {
				content = append(content, anthropic.NewTextMessageContent(msg.Text()))
			}
		default:
			role = anthropic.RoleUser
			content = append(content, anthropic.NewTextMessageContent(msg.Text()))
		}
		if len(content) == 0 {
			continue
		}
		if last := len(ret) - 1; last >= 0 && ret[last].Role == role {
			ret[last].Content = append(ret[last].Content, content...)
			continue
		}
		ret = append(ret, anthropic.Message{
			Role:    role,
			Content: content,
		})
	}
	return ret
}

// FromAnthropic convert response from anthropic
func FromAnthropic(src *anthropic.MessagesResponse, dist *components.LLMResponse) {
	dist.ID = src.ID
	dist.Role = components.AssistantRole
	dist.Model = string(src.Model)
	dist.FinishReason = string(src.StopReason)
	dist.Usage = &components.LLMUsage{
		InputTokens:  int64(src.Usage.InputTokens),
		OutputTokens: int64(src.Usage.OutputTokens),
	}
	var texts []string
	for _, c := range src.Content {
		switch c.Type {
		case anthropic.MessagesContentTypeText:
			if c.Text != nil {
				texts = append(texts, *c.Text)
			}
		case anthropic.MessagesContentTypeToolUse:
			if c.MessageContentToolUse == nil {
				continue
			}
			dist.ToolCalls = append(dist.ToolCalls, components.ToolCall{
				ID:        c.MessageContentToolUse.ID,
				Name:      c.MessageContentToolUse.Name,
				Arguments: string(c.MessageContentToolUse.Input),
			})
		}
	}
	dist.Content = strings.Join(texts, "\n")
}
