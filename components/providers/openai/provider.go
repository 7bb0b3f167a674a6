package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/bububa/searchgpt/components"
)

// Provider is a components.ChatProvider backed by the OpenAI chat completions API
type Provider struct {
	*openai.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ components.ChatProvider = (*Provider)(nil)

func New(client *openai.Client, opts ...Option) *Provider {
	ret := &Provider{
		Client: client,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.model == "" {
		ret.model = DefaultModel
	}
	return ret
}

func (p *Provider) Model() string {
	return p.model
}

// Chat sends req as a chat completion with tools and a strict json_schema response format
func (p *Provider) Chat(ctx context.Context, req *components.ChatRequest, resp *components.LLMResponse) error {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Temperature:         p.temperature,
		MaxCompletionTokens: p.maxTokens,
		Messages:            ToOpenAIMessages(req.System, req.Messages),
	}
	for _, def := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	if format := req.ResponseFormat; format != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        format.Name,
				Description: format.Description,
				Schema:      format.Schema,
				Strict:      true,
			},
		}
	}
	res, err := p.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return err
	}
	FromOpenAI(&res, resp)
	return nil
}

// ToOpenAIMessages converts a conversation. A tool message whose call is not
// part of the conversation, because it was trimmed, becomes assistant text.
func ToOpenAIMessages(system string, messages []components.Message) []openai.ChatCompletionMessage {
	ret := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		ret = append(ret, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	calls := make(map[string]struct{})
	for _, msg := range messages {
		v := openai.ChatCompletionMessage{
			Role:    msg.Role(),
			Content: msg.Text(),
		}
		switch msg.Role() {
		case components.AssistantRole:
			for _, call := range msg.ToolCalls() {
				calls[call.ID] = struct{}{}
				v.ToolCalls = append(v.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
		case components.ToolRole:
			if _, ok := calls[msg.ToolCallID()]; ok {
				v.ToolCallID = msg.ToolCallID()
			} else {
				v.Role = openai.ChatMessageRoleAssistant
			}
		}
		ret = append(ret, v)
	}
	return ret
}

// FromOpenAI converts the first choice of a chat completion
func FromOpenAI(src *openai.ChatCompletionResponse, dist *components.LLMResponse) {
	dist.ID = src.ID
	dist.Role = components.AssistantRole
	dist.Model = src.Model
	dist.Timestamp = src.Created
	dist.Usage = &components.LLMUsage{
		InputTokens:  int64(src.Usage.PromptTokens),
		OutputTokens: int64(src.Usage.CompletionTokens),
	}
	if len(src.Choices) == 0 {
		return
	}
	choice := src.Choices[0]
	dist.Content = choice.Message.Content
	dist.FinishReason = string(choice.FinishReason)
	for _, call := range choice.Message.ToolCalls {
		dist.ToolCalls = append(dist.ToolCalls, components.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
}
