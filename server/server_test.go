package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/bububa/searchgpt/agents"
	"github.com/bububa/searchgpt/components"
	"github.com/bububa/searchgpt/components/answer"
	"github.com/bububa/searchgpt/components/meter"
)

type fakeAssistant struct {
	ret       *agents.Result
	err       error
	text      string
	requester string
}

func (a *fakeAssistant) Handle(_ context.Context, text string, requester string) (*agents.Result, error) {
	a.text = text
	a.requester = requester
	return a.ret, a.err
}

func TestAsk(t *testing.T) {
	assistant := &fakeAssistant{
		ret: &agents.Result{
			Answer:   &answer.Answer{LongResponse: "<b>da</b>", ShortResponse: "da", Title: "Odgovor"},
			ToolUsed: true,
			Sources:  []string{"https://a.example"},
			Usage:    components.LLMUsage{InputTokens: 10, OutputTokens: 5},
			Cost:     meter.Cost{InputCost: 0.1, OutputCost: 0.2, TotalCost: 0.3},
		},
	}
	srv := httptest.NewServer(New(assistant))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/", strings.NewReader(`{"text":"pitanje"}`))
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["internet_search"])
	require.Equal(t, []any{"https://a.example"}, body["sources"])
	content := body["content"].(map[string]any)
	require.Equal(t, "da", content["shortresponse"])
	require.Equal(t, "<b>da</b>", content["longresponse"])
	require.Equal(t, "Odgovor", content["title"])
	price := body["price_info"].(map[string]any)
	require.InDelta(t, 0.3, price["total_price"], 1e-9)
	require.Equal(t, "pitanje", assistant.text)
	require.Equal(t, "203.0.113.7", assistant.requester)
}

func TestAskErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{"text":`, nil, http.StatusBadRequest},
		{"empty input", `{"text":""}`, fmt.Errorf("%w: %w", agents.ErrRequestFailed, agents.ErrEmptyInput), http.StatusBadRequest},
		{"model failure", `{"text":"x"}`, fmt.Errorf("%w: %w", agents.ErrRequestFailed, errors.New("upstream secret")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(New(&fakeAssistant{err: tt.err}))
			defer srv.Close()
			resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			bs, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"error":"An error occurred"}`, string(bs))
		})
	}
}

func TestRequester(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		remote    string
		expect    string
	}{
		{"forwarded", "198.51.100.1", "10.0.0.1:5555", "198.51.100.1"},
		{"forwarded chain", " 198.51.100.1 , 10.0.0.2", "10.0.0.1:5555", "198.51.100.1"},
		{"remote addr", "", "10.0.0.1:5555", "10.0.0.1"},
		{"remote without port", "", "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			require.Equal(t, tt.expect, Requester(r))
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := meter.New(reg)
	m.Record(&components.LLMUsage{InputTokens: 7, OutputTokens: 3})
	srv := httptest.NewServer(New(&fakeAssistant{}, WithMetrics(reg)))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bs, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(bs), `searchgpt_llm_tokens_total{direction="input"} 7`)
}
