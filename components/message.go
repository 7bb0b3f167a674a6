package components

import (
	"encoding/json"

	"github.com/rs/xid"

	"github.com/bububa/searchgpt/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message  Represents a message in the conversation.
//
// Attributes:
//
//	role: who sent the message.
//	content: The content of the message.
//	toolCalls: tool invocations requested by an assistant message.
//	toolCallID: the invocation a tool message answers.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID     string
	toolCalls  []ToolCall
	toolCallID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// NewToolCallMessage returns an assistant message carrying tool calls
func NewToolCallMessage(content schema.Schema, calls ...ToolCall) *Message {
	msg := NewMessage(AssistantRole, content)
	msg.toolCalls = calls
	return msg
}

// NewToolMessage returns a tool message answering the call identified by callID
func NewToolMessage(callID string, content schema.Schema) *Message {
	msg := NewMessage(ToolRole, content)
	msg.toolCallID = callID
	return msg
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Text returns message content as text
func (m Message) Text() string {
	return schema.Stringify(m.content)
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToolCalls returns the tool calls of an assistant message
func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

// ToolCallID returns the id of the call a tool message answers
func (m Message) ToolCallID() string {
	return m.toolCallID
}

// Serialize returns the wire-like form used for token accounting
func (m Message) Serialize() string {
	bs, _ := json.Marshal(struct {
		Role       string     `json:"role"`
		Content    string     `json:"content,omitempty"`
		ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
		ToolCallID string     `json:"tool_call_id,omitempty"`
	}{
		Role:       m.role,
		Content:    m.Text(),
		ToolCalls:  m.toolCalls,
		ToolCallID: m.toolCallID,
	})
	return string(bs)
}
