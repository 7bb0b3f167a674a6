package budget

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/schema"
)

// fixedCounter charges a fixed price per message, keyed by content
type fixedCounter map[string]int

func (c fixedCounter) Count(text string) int {
	for k, v := range c {
		if strings.Contains(text, k) {
			return v
		}
	}
	return 1
}

func newMessages(contents ...string) []components.Message {
	ret := make([]components.Message, 0, len(contents))
	for idx, c := range contents {
		role := components.UserRole
		if idx%2 == 1 {
			role = components.AssistantRole
		}
		ret = append(ret, *components.NewMessage(role, schema.String(c)))
	}
	return ret
}

func texts(msgs []components.Message) []string {
	ret := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ret = append(ret, m.Text())
	}
	return ret
}

func TestTrimKeepsSuffixInOrder(t *testing.T) {
	counter := fixedCounter{"m0": 10, "m1": 10, "m2": 10, "m3": 10}
	msgs := newMessages("m0", "m1", "m2", "m3")
	got := Trim(msgs, 25, counter)
	require.Equal(t, []string{"m2", "m3"}, texts(got))
}

func TestTrimFitsEverything(t *testing.T) {
	msgs := newMessages("a", "b", "c")
	got := Trim(msgs, 100, fixedCounter{})
	require.Equal(t, []string{"a", "b", "c"}, texts(got))
}

func TestTrimKeepsOversizedMostRecent(t *testing.T) {
	counter := fixedCounter{"huge": 1000, "small": 1}
	msgs := newMessages("small", "huge")
	got := Trim(msgs, 10, counter)
	require.Equal(t, []string{"huge"}, texts(got))
}

func TestTrimStopsAtFirstOverflow(t *testing.T) {
	// an older small message must not be kept once a newer one overflowed
	counter := fixedCounter{"old": 1, "big": 50, "new": 5}
	msgs := newMessages("old", "big", "new")
	got := Trim(msgs, 20, counter)
	require.Equal(t, []string{"new"}, texts(got))
}

func TestTrimEmpty(t *testing.T) {
	require.Empty(t, Trim(nil, 10, WordCounter{}))
}

func TestTrimIsContiguousSuffix(t *testing.T) {
	contents := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		contents = append(contents, fmt.Sprintf("message number %d with some words", i))
	}
	msgs := newMessages(contents...)
	for budget := 0; budget < 200; budget += 7 {
		got := Trim(msgs, budget, WordCounter{})
		require.NotEmpty(t, got)
		offset := len(msgs) - len(got)
		for idx := range got {
			require.Equal(t, msgs[offset+idx].Text(), got[idx].Text())
		}
	}
}

func TestBudgeterReservesSystemPrompt(t *testing.T) {
	b := New(WordCounter{}, 12)
	msgs := newMessages("one two three", "four five six")
	// each serialized message is a handful of words; a long system prompt leaves room for one
	got := b.Fit("a b c d e f g h", msgs)
	require.Equal(t, []string{"four five six"}, texts(got))
	require.Len(t, New(nil, 0).Fit("whatever", msgs), 2)
}
