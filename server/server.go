// Package server exposes the assistant over http
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bububa/searchgpt/agents"
	"github.com/bububa/searchgpt/components/answer"
)

// MaxRequestBody limits the size of a request body
const MaxRequestBody = 64 << 10

// ErrorMessage is the only error text clients ever see
const ErrorMessage = "An error occurred"

// Assistant answers one user request
type Assistant interface {
	Handle(ctx context.Context, text string, requester string) (*agents.Result, error)
}

// Request body of POST /
type Request struct {
	Text string `json:"text"`
}

// PriceInfo cost of a request in dollars
type PriceInfo struct {
	InputPrice  float64 `json:"input_price"`
	OutputPrice float64 `json:"output_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Response body of POST /
type Response struct {
	Content        *answer.Answer `json:"content"`
	InternetSearch bool           `json:"internet_search"`
	Sources        []string       `json:"sources"`
	PriceInfo      PriceInfo      `json:"price_info"`
}

// NewResponse converts an assistant result
func NewResponse(ret *agents.Result) *Response {
	sources := ret.Sources
	if sources == nil {
		sources = []string{}
	}
	return &Response{
		Content:        ret.Answer,
		InternetSearch: ret.ToolUsed,
		Sources:        sources,
		PriceInfo: PriceInfo{
			InputPrice:  ret.Cost.InputCost,
			OutputPrice: ret.Cost.OutputCost,
			TotalPrice:  ret.Cost.TotalCost,
		},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server routes http requests to the assistant
type Server struct {
	assistant Assistant
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
	mux       *http.ServeMux
}

// Option configures a Server
type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics serves the collectors of g on /metrics
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New returns a Server answering with assistant
func New(assistant Assistant, opts ...Option) *Server {
	ret := &Server{
		assistant: assistant,
		logger:    zerolog.Nop(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.mux.HandleFunc("POST /", ret.handleAsk)
	if ret.gatherer != nil {
		ret.mux.Handle("GET /metrics", promhttp.HandlerFor(ret.gatherer, promhttp.HandlerOpts{}))
	}
	return ret
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	requester := Requester(r)
	log := s.logger.With().Str("request_id", requestID).Str("requester", requester).Logger()
	w.Header().Set("X-Request-Id", requestID)

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody)).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("invalid request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrorMessage})
		return
	}
	start := time.Now()
	ret, err := s.assistant.Handle(log.WithContext(r.Context()), req.Text, requester)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agents.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: ErrorMessage})
		return
	}
	writeJSON(w, http.StatusOK, NewResponse(ret))
}

// Requester identifies the client: the first X-Forwarded-For entry, otherwise the remote host
func Requester(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
