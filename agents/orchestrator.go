package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/components/answer"
	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/components/systemprompt"
	"github.com/bububa/searchgpt/components/systemprompt/cot"
	"github.com/bububa/searchgpt/schema"
	"github.com/bububa/searchgpt/tools"
)

// DefaultMaxRounds model calls allowed for one request
const DefaultMaxRounds = 5

// Config represents general agents configuration
type Config struct {
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// budgeter trims the conversation to the model context budget
	budgeter *budget.Budgeter
	// tools the model may call, by title
	tools     []tools.AnonymousTool
	maxRounds int
	meter     *meter.Meter
	logger    zerolog.Logger
	// name is Agent name presentation
	name string
}

// Result of one answered request
type Result struct {
	Answer *answer.Answer `json:"content"`
	// ToolUsed whether a tool produced evidence for the answer
	ToolUsed bool `json:"internet_search"`
	// Sources urls of the pages the evidence was taken from
	Sources []string            `json:"sources"`
	Usage   components.LLMUsage `json:"usage"`
	Cost    meter.Cost          `json:"price_info"`
}

func (r Result) String() string {
	return schema.JSON(r)
}

// Orchestrator runs the tool calling conversation with a language model.
// Every round sends the budgeted conversation to the model, which either
// calls a tool, whose output is appended before the next round, or answers.
type Orchestrator struct {
	Config
	provider  components.ChatProvider
	startHook func(context.Context, *Orchestrator, string)
	endHook   func(context.Context, *Orchestrator, string, *Result)
	errorHook func(context.Context, *Orchestrator, string, error)
}

// NewOrchestrator initializes the Orchestrator
func NewOrchestrator(provider components.ChatProvider, options ...Option) *Orchestrator {
	ret := &Orchestrator{
		provider: provider,
		Config: Config{
			logger: zerolog.Nop(),
		},
	}
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.budgeter == nil {
		ret.budgeter = budget.New(nil, 0)
	}
	if ret.maxRounds <= 0 {
		ret.maxRounds = DefaultMaxRounds
	}
	return ret
}

func (o *Orchestrator) Name() string {
	return o.name
}

func (o *Orchestrator) SetStartHook(fn func(context.Context, *Orchestrator, string)) {
	o.startHook = fn
}

func (o *Orchestrator) SetEndHook(fn func(context.Context, *Orchestrator, string, *Result)) {
	o.endHook = fn
}

func (o *Orchestrator) SetErrorHook(fn func(context.Context, *Orchestrator, string, error)) {
	o.errorHook = fn
}

// Run answers userText. Usage of every model call is counted, even when the call fails.
func (o *Orchestrator) Run(ctx context.Context, userText string) (*Result, error) {
	if fn := o.startHook; fn != nil {
		fn(ctx, o, userText)
	}
	ret, err := o.run(ctx, userText)
	if err != nil {
		if fn := o.errorHook; fn != nil {
			fn(ctx, o, userText, err)
		}
		return nil, err
	}
	if fn := o.endHook; fn != nil {
		fn(ctx, o, userText, ret)
	}
	return ret, nil
}

func (o *Orchestrator) run(ctx context.Context, userText string) (*Result, error) {
	memory := components.NewMemory().NewTurn()
	memory.NewMessage(components.UserRole, schema.NewString(userText))
	system := o.systemPromptGenerator.Generate()
	definitions := make([]components.ToolDefinition, 0, len(o.tools))
	for _, t := range o.tools {
		definitions = append(definitions, tools.Definition(t))
	}
	ret := &Result{
		Sources: []string{},
	}
	for round := 0; round < o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		messages := o.budgeter.Fit(system, memory.History())
		if kept, total := len(messages), memory.MessageCount(); kept < total {
			o.logger.Debug().Int("kept", kept).Int("messages", total).Int("max_tokens", o.budgeter.MaxTokens()).Int("system_tokens", o.budgeter.Count(system)).Msg("conversation trimmed")
		}
		req := &components.ChatRequest{
			System:         system,
			Messages:       messages,
			Tools:          definitions,
			ResponseFormat: answer.ResponseFormat(),
		}
		var resp components.LLMResponse
		err := o.provider.Chat(ctx, req, &resp)
		if resp.Usage != nil {
			ret.Usage.Merge(resp.Usage)
			o.meter.Record(resp.Usage)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", ErrModelCall, err)
		}
		if resp.HasToolCalls() {
			if err := o.callTool(ctx, memory, &resp, ret); err != nil {
				return nil, err
			}
			continue
		}
		if strings.TrimSpace(resp.Content) == "" {
			return nil, ErrEmptyResponse
		}
		final, err := answer.Parse(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelCall, err)
		}
		final.Normalize()
		ret.Answer = final
		o.logger.Debug().Int("rounds", round+1).Bool("tool_used", ret.ToolUsed).Int64("input_tokens", ret.Usage.InputTokens).Int64("output_tokens", ret.Usage.OutputTokens).Msg("answered")
		return ret, nil
	}
	return nil, ErrToolBudgetExhausted
}

// callTool honours the first tool call of resp. Any dispatch failure aborts the request.
func (o *Orchestrator) callTool(ctx context.Context, memory *components.Memory, resp *components.LLMResponse, ret *Result) error {
	call := resp.ToolCalls[0]
	if n := len(resp.ToolCalls); n > 1 {
		o.logger.Debug().Int("tool_calls", n).Str("tool", call.Name).Msg("only the first tool call is honoured")
	}
	memory.AddMessage(components.NewToolCallMessage(schema.NewString(resp.Content), call))
	o.meter.Incr(meter.EventToolCall)
	output, err := o.dispatch(ctx, call)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		o.logger.Warn().Err(err).Str("tool", call.Name).Str("arguments", call.Arguments).Msg("tool call failed")
		return fmt.Errorf("%w: %w", ErrToolCall, err)
	}
	ret.ToolUsed = true
	if provider, ok := output.(tools.SourcesProvider); ok {
		ret.Sources = appendUnique(ret.Sources, provider.Sources()...)
	}
	memory.AddMessage(components.NewToolMessage(call.ID, output))
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, call components.ToolCall) (schema.Schema, error) {
	for _, t := range o.tools {
		if t.Title() == call.Name {
			return t.RunAnonymous(ctx, call.Arguments)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
