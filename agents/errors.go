package agents

import "errors"

var (
	// ErrModelCall the language model call failed or returned an unusable answer, never retried
	ErrModelCall = errors.New("agents: model call failed")
	// ErrToolBudgetExhausted the model kept calling tools past the round limit
	ErrToolBudgetExhausted = errors.New("agents: tool call rounds exhausted")
	// ErrEmptyResponse the model returned neither a tool call nor content
	ErrEmptyResponse = errors.New("agents: empty model response")
	// ErrToolCall the tool requested by the model could not be run, never retried
	ErrToolCall = errors.New("agents: tool call failed")
	// ErrUnknownTool the model called a tool which is not registered
	ErrUnknownTool = errors.New("agents: unknown tool")
	// ErrEmptyInput the user sent no text
	ErrEmptyInput = errors.New("agents: empty input")
	// ErrRequestFailed wraps every failure surfaced by Assistant.Handle
	ErrRequestFailed = errors.New("agents: request failed")
)
