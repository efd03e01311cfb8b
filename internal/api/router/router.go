package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/ai-voice-outbound/internal/calls"
	httpmiddleware "github.com/wolfman30/ai-voice-outbound/internal/http/middleware"
	"github.com/wolfman30/ai-voice-outbound/internal/webhook"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	WebhookHandler     *webhook.Handler
	CallsHandler       *calls.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: the provider webhook and health checks carry no
	// authentication by design.
	r.Get("/health", cfg.WebhookHandler.HealthCheck)
	r.Post("/webhook", cfg.WebhookHandler.HandleWebhook)

	if cfg.CallsHandler != nil {
		r.Post("/calls", cfg.CallsHandler.CreateCall)
		r.Get("/calls/{callID}", cfg.CallsHandler.GetCallStatus)
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
