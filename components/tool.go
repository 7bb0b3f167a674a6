package components

import "encoding/json"

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// DecodeArguments unmarshals the raw JSON arguments into v
func (c ToolCall) DecodeArguments(v any) error {
	args := c.Arguments
	if args == "" {
		args = "{}"
	}
	return json.Unmarshal([]byte(args), v)
}

// ToolDefinition is the schema a tool is advertised to the model with
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters JSON schema of the arguments object
	Parameters json.Marshaler
}
