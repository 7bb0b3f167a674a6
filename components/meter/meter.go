// Package meter accounts token usage and its cost.
//
// Per-request cost is derived from the request's own components.LLMUsage
// accumulator. Meter keeps process wide totals for observability only.
package meter

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/bububa/searchgpt/components"
)

// Rates are prices in dollars per 1000 tokens
type Rates struct {
	InputPer1K  float64 `json:"input_per_1k" yaml:"input_per_1k" validate:"gte=0"`
	OutputPer1K float64 `json:"output_per_1k" yaml:"output_per_1k" validate:"gte=0"`
}

// DefaultRates gpt-4o-mini pricing
var DefaultRates = Rates{
	InputPer1K:  0.000150,
	OutputPer1K: 0.000600,
}

// Cost of a usage, in dollars
type Cost struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
}

// Cost computes the cost of usage
func (r Rates) Cost(usage *components.LLMUsage) Cost {
	if usage == nil {
		return Cost{}
	}
	ret := Cost{
		InputCost:  float64(usage.InputTokens) / 1000 * r.InputPer1K,
		OutputCost: float64(usage.OutputTokens) / 1000 * r.OutputPer1K,
	}
	ret.TotalCost = ret.InputCost + ret.OutputCost
	return ret
}

const namespace = "searchgpt"

// Event names counted by Meter.Incr
const (
	EventModerationFlagged = "moderation_flagged"
	EventModerationFailure = "moderation_failure"
	EventFetchFailure      = "fetch_failure"
	EventSearchFailure     = "search_failure"
	EventToolCall          = "tool_call"
)

// Meter is a process wide usage meter, safe for concurrent use
type Meter struct {
	rates        Rates
	inputTokens  *atomic.Int64
	outputTokens *atomic.Int64
	tokens       *prometheus.CounterVec
	cost         prometheus.Counter
	events       *prometheus.CounterVec
}

// Option configures a Meter
type Option func(*Meter)

// WithRates overrides DefaultRates
func WithRates(rates Rates) Option {
	return func(m *Meter) {
		m.rates = rates
	}
}

// New returns a Meter whose prometheus collectors are registered on reg when reg is not nil
func New(reg prometheus.Registerer, opts ...Option) *Meter {
	ret := &Meter{
		rates:        DefaultRates,
		inputTokens:  atomic.NewInt64(0),
		outputTokens: atomic.NewInt64(0),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Language model tokens consumed, by direction.",
		}, []string{"direction"}),
		cost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_dollars_total",
			Help:      "Accumulated language model cost in dollars.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Pipeline events such as moderation or fetch failures.",
		}, []string{"event"}),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if reg != nil {
		reg.MustRegister(ret.tokens, ret.cost, ret.events)
	}
	return ret
}

// Rates returns the meter pricing
func (m *Meter) Rates() Rates {
	return m.rates
}

// Record adds usage to the process wide counters
func (m *Meter) Record(usage *components.LLMUsage) {
	if m == nil || usage == nil {
		return
	}
	m.inputTokens.Add(usage.InputTokens)
	m.outputTokens.Add(usage.OutputTokens)
	m.tokens.WithLabelValues("input").Add(float64(usage.InputTokens))
	m.tokens.WithLabelValues("output").Add(float64(usage.OutputTokens))
	m.cost.Add(m.rates.Cost(usage).TotalCost)
}

// Incr counts a pipeline event
func (m *Meter) Incr(event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event).Inc()
}

// Totals returns the usage recorded since process start
func (m *Meter) Totals() components.LLMUsage {
	return components.LLMUsage{
		InputTokens:  m.inputTokens.Load(),
		OutputTokens: m.outputTokens.Load(),
	}
}

// TotalCost returns the cost of Totals
func (m *Meter) TotalCost() Cost {
	totals := m.Totals()
	return m.rates.Cost(&totals)
}
