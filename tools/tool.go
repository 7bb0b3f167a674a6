package tools

import (
	"context"
	"encoding/json"

	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/schema"
)

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn func(context.Context, ITool, any))
	SetEndHook(fn func(context.Context, ITool, any, any))
	SetErrorHook(fn func(context.Context, ITool, any, error))
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I, *O) error
}

// AnonymousTool is a tool the language model can call by name with raw JSON arguments
type AnonymousTool interface {
	ITool
	// Parameters returns the JSON schema of the arguments
	Parameters() json.Marshaler
	RunAnonymous(context.Context, string) (schema.Schema, error)
}

// SourcesProvider is implemented by tool outputs which were built from web pages
type SourcesProvider interface {
	Sources() []string
}

// Definition describes an AnonymousTool for a chat request
func Definition(t AnonymousTool) components.ToolDefinition {
	return components.ToolDefinition{
		Name:        t.Title(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
