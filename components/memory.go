package components

import (
	"sync"

	"github.com/bububa/searchgpt/schema"
)

// Memory holds the conversation of a single request.
// threadsafe
type Memory struct {
	//	history is a list of messages representing the conversation.
	history []Message
	//	turnID is the ID of the current turn.
	turnID string
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history
func NewMemory() *Memory {
	return &Memory{
		history: make([]Message, 0, 8),
		mtx:     new(sync.RWMutex),
	}
}

// TurnID returns the current turn ID
func (m *Memory) TurnID() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.turnID
}

// NewTurn initializes a new turn by generating a random turn ID.
func (m *Memory) NewTurn() *Memory {
	m.mtx.Lock()
	m.turnID = NewTurnID()
	m.mtx.Unlock()
	return m
}

// NewMessage appends a message with the given role and content
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	return m.AddMessage(NewMessage(role, content))
}

// AddMessage appends msg stamped with the current turn ID
func (m *Memory) AddMessage(msg *Message) *Message {
	m.mtx.Lock()
	msg.SetTurnID(m.turnID)
	m.history = append(m.history, *msg)
	m.mtx.Unlock()
	return msg
}

// History returns a copy of the conversation in chronological order
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	ret := make([]Message, len(m.history))
	copy(ret, m.history)
	return ret
}

// MessageCount returns the number of messages in the conversation.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}
