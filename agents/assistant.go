package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/components/moderation"
)

// DefaultRequestTimeout deadline of one request
const DefaultRequestTimeout = 90 * time.Second

// Assistant answers a single user request: moderation first, then the Orchestrator
type Assistant struct {
	orchestrator *Orchestrator
	gate         *moderation.Gate
	meter        *meter.Meter
	timeout      time.Duration
	logger       zerolog.Logger
}

// AssistantOption configures an Assistant
type AssistantOption func(*Assistant)

// WithModeration screens every request with gate before the model sees it
func WithModeration(gate *moderation.Gate) AssistantOption {
	return func(a *Assistant) {
		a.gate = gate
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout
func WithRequestTimeout(timeout time.Duration) AssistantOption {
	return func(a *Assistant) {
		a.timeout = timeout
	}
}

func WithAssistantMeter(m *meter.Meter) AssistantOption {
	return func(a *Assistant) {
		a.meter = m
	}
}

func WithAssistantLogger(l zerolog.Logger) AssistantOption {
	return func(a *Assistant) {
		a.logger = l
	}
}

// NewAssistant returns an Assistant driving o
func NewAssistant(o *Orchestrator, opts ...AssistantOption) *Assistant {
	ret := &Assistant{
		orchestrator: o,
		timeout:      DefaultRequestTimeout,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Handle answers text sent by requester. Flagged text is refused without
// calling the model. Failures are logged and returned wrapped in ErrRequestFailed.
func (a *Assistant) Handle(ctx context.Context, text string, requester string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, ErrEmptyInput)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	if a.gate != nil {
		if verdict := a.gate.Check(ctx, text, requester); verdict.Flagged {
			return refusal(), nil
		}
	}
	start := time.Now()
	ret, err := a.orchestrator.Run(ctx, text)
	if err != nil {
		a.logger.Error().Err(err).Str("requester", requester).Dur("elapsed", time.Since(start)).Msg("request failed")
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	ret.Cost = a.rates().Cost(&ret.Usage)
	a.logger.Info().
		Str("requester", requester).
		Bool("internet_search", ret.ToolUsed).
		Int("sources", len(ret.Sources)).
		Int64("input_tokens", ret.Usage.InputTokens).
		Int64("output_tokens", ret.Usage.OutputTokens).
		Float64("total_cost", ret.Cost.TotalCost).
		Dur("elapsed", time.Since(start)).
		Msg("request answered")
	return ret, nil
}

func (a *Assistant) rates() meter.Rates {
	if a.meter != nil {
		return a.meter.Rates()
	}
	return meter.DefaultRates
}
