package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/bububa/searchgpt/components/meter"
)

type classifierFunc func(context.Context, string) (bool, error)

func (f classifierFunc) Classify(ctx context.Context, text string) (bool, error) {
	return f(ctx, text)
}

func eventCount(t *testing.T, reg *prometheus.Registry, event string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "searchgpt_events_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "event" && label.GetValue() == event {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCheckFlagged(t *testing.T) {
	incidents := new(bytes.Buffer)
	reg := prometheus.NewRegistry()
	gate := New(
		classifierFunc(func(context.Context, string) (bool, error) { return true, nil }),
		WithIncidentLogger(zerolog.New(incidents)),
		WithMeter(meter.New(reg)),
	)
	verdict := gate.Check(context.Background(), "zabranjen sadrzaj", "10.0.0.7")
	require.Equal(t, Verdict{Flagged: true}, verdict)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(incidents.Bytes(), &entry))
	require.Equal(t, "zabranjen sadrzaj", entry["text"])
	require.Equal(t, "10.0.0.7", entry["requester"])
	require.Equal(t, float64(1), eventCount(t, reg, meter.EventModerationFlagged))
}

func TestCheckClean(t *testing.T) {
	incidents := new(bytes.Buffer)
	gate := New(
		classifierFunc(func(context.Context, string) (bool, error) { return false, nil }),
		WithIncidentLogger(zerolog.New(incidents)),
	)
	require.Equal(t, Verdict{}, gate.Check(context.Background(), "kakvo je vrijeme", "10.0.0.7"))
	require.Zero(t, incidents.Len())
}

func TestCheckFailsOpen(t *testing.T) {
	logs := new(bytes.Buffer)
	incidents := new(bytes.Buffer)
	reg := prometheus.NewRegistry()
	gate := New(
		classifierFunc(func(context.Context, string) (bool, error) { return false, ErrService }),
		WithLogger(zerolog.New(logs)),
		WithIncidentLogger(zerolog.New(incidents)),
		WithMeter(meter.New(reg)),
	)
	verdict := gate.Check(context.Background(), "tekst", "10.0.0.7")
	require.False(t, verdict.Flagged)
	require.True(t, verdict.FailedOpen)
	require.Contains(t, logs.String(), `"error_class":"moderation_service"`)
	require.Zero(t, incidents.Len())
	require.Equal(t, float64(1), eventCount(t, reg, meter.EventModerationFailure))
}

func newOpenAIClient(url string) *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = url + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAIClassifier(t *testing.T) {
	var req openai.ModerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/moderations" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"modr-1","model":"omni-moderation-latest","results":[{"flagged":false},{"flagged":true}]}`))
	}))
	defer srv.Close()

	flagged, err := NewOpenAIClassifier(newOpenAIClient(srv.URL), "").Classify(context.Background(), "tekst")
	require.NoError(t, err)
	require.True(t, flagged)
	require.Equal(t, "tekst", req.Input)
	require.Equal(t, openai.ModerationOmniLatest, req.Model)
}

func TestOpenAIClassifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClassifier(newOpenAIClient(srv.URL), "").Classify(context.Background(), "tekst")
	if !errors.Is(err, ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}
