// Command searchgpt serves the search assistant over http
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bububa/searchgpt/agents"
	"github.com/bububa/searchgpt/components/budget"
	"github.com/bububa/searchgpt/components/meter"
	"github.com/bububa/searchgpt/components/moderation"
	"github.com/bububa/searchgpt/components/providers"
	"github.com/bububa/searchgpt/config"
	"github.com/bububa/searchgpt/logger"
	"github.com/bububa/searchgpt/server"
	"github.com/bububa/searchgpt/tools/searxng"
	"github.com/bububa/searchgpt/tools/webscraper"
	"github.com/bububa/searchgpt/tools/websearch"
)

func main() {
	configPath := flag.String("config", "searchgpt.yaml", "path to the yaml configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, incidents, closeLogs, err := logger.Open(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log, incidents); err != nil {
		log.Error().Err(err).Msg("searchgpt stopped")
		closeLogs()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, incidents zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := meter.New(reg, meter.WithRates(cfg.Rates))

	assistant, err := newAssistant(cfg, m, log, incidents)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(assistant, server.WithLogger(log), server.WithMetrics(reg)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("provider", cfg.LLM.Provider).Msg("searchgpt listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newAssistant(cfg *config.Config, m *meter.Meter, log zerolog.Logger, incidents zerolog.Logger) (*agents.Assistant, error) {
	provider, err := providers.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	counter, err := budget.NewTikTokenCounter(cfg.EncodingModel())
	if err != nil {
		return nil, err
	}

	searchOpts := []searxng.Option{
		searxng.WithBaseURL(cfg.Search.BaseURL),
		searxng.WithLanguage(cfg.Search.Language),
		searxng.WithMaxResults(cfg.Search.MaxResults),
		searxng.WithSafeSearch(cfg.Search.SafeSearch),
		searxng.WithEngines(cfg.Search.Engines...),
		searxng.WithLogger(log),
	}
	if cfg.Search.RateLimit > 0 {
		searchOpts = append(searchOpts, searxng.WithRateLimit(rate.Limit(cfg.Search.RateLimit), max(cfg.Search.Burst, 1)))
	}
	scraper := webscraper.New(
		webscraper.WithUserAgent(cfg.Fetch.UserAgent),
		webscraper.WithTimeout(cfg.Fetch.Timeout),
		webscraper.WithMaxContentLength(cfg.Fetch.MaxContentLength),
		webscraper.WithMaxAttempts(cfg.Fetch.MaxAttempts),
		webscraper.WithLogger(log),
		webscraper.WithMeter(m),
	)
	gatherer := websearch.New(
		searxng.New(searchOpts...),
		websearch.WithScraper(scraper),
		websearch.WithQuota(cfg.Search.Quota),
		websearch.WithConcurrency(cfg.Search.Concurrency),
		websearch.WithMaxCandidates(cfg.Search.MaxResults),
		websearch.WithMaxBodyTokens(cfg.BodyTokens(), counter),
		websearch.WithLogger(log),
		websearch.WithMeter(m),
	)

	orchestrator := agents.NewOrchestrator(provider,
		agents.WithName("searchgpt"),
		agents.WithSystemPromptGenerator(agents.NewSystemPromptGenerator()),
		agents.WithBudgeter(budget.New(counter, cfg.Budget.MaxTokens)),
		agents.WithTools(gatherer),
		agents.WithMaxRounds(cfg.MaxRounds),
		agents.WithMeter(m),
		agents.WithLogger(log),
	)
	opts := []agents.AssistantOption{
		agents.WithRequestTimeout(cfg.RequestTimeout),
		agents.WithAssistantMeter(m),
		agents.WithAssistantLogger(log),
	}
	if !cfg.Moderation.Disabled {
		classifier := moderation.NewOpenAIClassifier(providers.NewOpenAIClient(cfg.Moderation.APIKey, cfg.Moderation.BaseURL), cfg.Moderation.Model)
		opts = append(opts, agents.WithModeration(moderation.New(classifier,
			moderation.WithLogger(log),
			moderation.WithIncidentLogger(incidents),
			moderation.WithMeter(m),
		)))
	}
	return agents.NewAssistant(orchestrator, opts...), nil
}
