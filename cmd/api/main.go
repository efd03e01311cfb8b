package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/ai-voice-outbound/internal/api/router"
	"github.com/wolfman30/ai-voice-outbound/internal/calls"
	appconfig "github.com/wolfman30/ai-voice-outbound/internal/config"
	"github.com/wolfman30/ai-voice-outbound/internal/ghl"
	observemetrics "github.com/wolfman30/ai-voice-outbound/internal/observability/metrics"
	"github.com/wolfman30/ai-voice-outbound/internal/retell"
	"github.com/wolfman30/ai-voice-outbound/internal/webhook"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

func main() {
	// Load .env if present, then configuration from the environment.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel, cfg.Env)

	// Invalid configuration is fatal before any request is served.
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger.Info("starting ai-voice-outbound server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Initialize API clients
	retellClient, err := retell.New(retell.Config{
		BaseURL: cfg.RetellBaseURL,
		APIKey:  cfg.RetellAPIKey,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to build retell client", "error", err)
		os.Exit(1)
	}
	ghlClient, err := ghl.New(ghl.Config{
		BaseURL: cfg.GHLBaseURL,
		APIKey:  cfg.GHLAPIKey,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to build ghl client", "error", err)
		os.Exit(1)
	}
	crm := ghl.NewCRM(ghlClient, cfg.GHLLocationID, cfg.GHLCalendarID, logger)

	// Metrics
	metricsHandler, callMetrics := setupCallMetrics()

	// Handlers
	processor := webhook.NewProcessor(webhook.ProcessorConfig{
		CRM:     crm,
		Logger:  logger,
		Metrics: callMetrics,
	})
	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		Processor: processor,
		Logger:    logger,
		Metrics:   callMetrics,
	})
	dialer := calls.NewDialer(calls.DialerConfig{
		Client:       retellClient,
		AgentID:      cfg.RetellAgentID,
		Logger:       logger,
		Metrics:      callMetrics,
		PollInterval: cfg.CallPollInterval,
		MaxWait:      cfg.CallMaxWait,
	})
	callsHandler := calls.NewHandler(dialer, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     webhookHandler,
		CallsHandler:       callsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "webhook_url", cfg.WebhookURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupCallMetrics builds a dedicated registry so the /metrics endpoint
// exposes only this service's series.
func setupCallMetrics() (http.Handler, *observemetrics.CallMetrics) {
	registry := prometheus.NewRegistry()
	callMetrics := observemetrics.NewCallMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, callMetrics
}
