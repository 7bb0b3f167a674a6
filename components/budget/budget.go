// Package budget trims a conversation to fit a token budget.
package budget

import (
	"github.com/bububa/searchgpt/components"
)

// Trim returns the longest suffix of messages whose serialized token count fits maxTokens.
// The most recent message is always kept, so a non-empty input never yields an
// empty result. The returned slice preserves chronological order.
func Trim(messages []components.Message, maxTokens int, counter TokenCounter) []components.Message {
	l := len(messages)
	if l == 0 {
		return []components.Message{}
	}
	start := l - 1
	total := counter.Count(messages[start].Serialize())
	for idx := l - 2; idx >= 0; idx-- {
		n := counter.Count(messages[idx].Serialize())
		if total+n > maxTokens {
			break
		}
		total += n
		start = idx
	}
	ret := make([]components.Message, l-start)
	copy(ret, messages[start:])
	return ret
}

// Budgeter binds a token counter to a context window budget.
type Budgeter struct {
	counter   TokenCounter
	maxTokens int
}

// New returns a Budgeter. A non-positive maxTokens disables trimming.
func New(counter TokenCounter, maxTokens int) *Budgeter {
	if counter == nil {
		counter = WordCounter{}
	}
	return &Budgeter{
		counter:   counter,
		maxTokens: maxTokens,
	}
}

// MaxTokens returns the budget
func (b *Budgeter) MaxTokens() int {
	return b.maxTokens
}

// Count counts tokens of text
func (b *Budgeter) Count(text string) int {
	return b.counter.Count(text)
}

// Fit trims messages so that they, together with the system prompt, fit the budget.
func (b *Budgeter) Fit(system string, messages []components.Message) []components.Message {
	if b.maxTokens <= 0 {
		ret := make([]components.Message, len(messages))
		copy(ret, messages)
		return ret
	}
	remain := b.maxTokens
	if system != "" {
		remain -= b.counter.Count(system)
	}
	return Trim(messages, remain, b.counter)
}
