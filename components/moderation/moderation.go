// Package moderation screens user input before it reaches the language model.
package moderation

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/components/meter"
)

// ErrService is returned by a Classifier when the moderation service can not be reached
var ErrService = errors.New("moderation: service error")

// Classifier flags disallowed text
type Classifier interface {
	Classify(ctx context.Context, text string) (flagged bool, err error)
}

// Verdict of a moderation check
type Verdict struct {
	// Flagged the input must not be answered
	Flagged bool `json:"flagged"`
	// FailedOpen the classifier failed and the input was let through
	FailedOpen bool `json:"failed_open,omitempty"`
}

// Gate consults a Classifier and records incidents
type Gate struct {
	classifier Classifier
	logger     zerolog.Logger
	incidents  zerolog.Logger
	meter      *meter.Meter
}

// Option configures a Gate
type Option func(*Gate)

// WithLogger sets the logger for classifier failures
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// WithIncidentLogger sets the logger which receives flagged inputs
func WithIncidentLogger(l zerolog.Logger) Option {
	return func(g *Gate) {
		g.incidents = l
	}
}

func WithMeter(m *meter.Meter) Option {
	return func(g *Gate) {
		g.meter = m
	}
}

// New returns a Gate backed by classifier
func New(classifier Classifier, opts ...Option) *Gate {
	ret := &Gate{
		classifier: classifier,
		logger:     zerolog.Nop(),
		incidents:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Check classifies text sent by requester. It never fails: classifier errors let the text through.
func (g *Gate) Check(ctx context.Context, text string, requester string) Verdict {
	flagged, err := g.classifier.Classify(ctx, text)
	if err != nil {
		g.logger.Error().Err(err).Str("error_class", "moderation_service").Str("requester", requester).Msg("moderation failed open")
		g.meter.Incr(meter.EventModerationFailure)
		return Verdict{FailedOpen: true}
	}
	if flagged {
		g.incidents.Warn().Str("requester", requester).Str("text", text).Msg("flagged input")
		g.meter.Incr(meter.EventModerationFlagged)
	}
	return Verdict{Flagged: flagged}
}
