package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	observemetrics "github.com/wolfman30/ai-voice-outbound/internal/observability/metrics"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// Handler is the HTTP entrypoint for Retell webhook events. Its
// contract with the provider: acknowledge receipt with a 200 before any
// business logic runs, and never let a processing failure change the
// response. A non-200 here would trigger provider-side redelivery
// storms for failures that retrying cannot fix.
type Handler struct {
	processor *Processor
	logger    *logging.Logger
	metrics   *observemetrics.CallMetrics
}

// HandlerConfig wires a webhook Handler.
type HandlerConfig struct {
	Processor *Processor
	Logger    *logging.Logger
	Metrics   *observemetrics.CallMetrics
}

// NewHandler creates the webhook HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{
		processor: cfg.Processor,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

type ackResponse struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

// HandleWebhook processes POST /webhook. The acknowledgment is written
// before processing starts; the event is then handled on a detached
// goroutine whose failures are logged, never surfaced to the sender.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		writeAck(w, "Processing error")
		return
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Error("failed to decode webhook event", "error", err)
		h.metrics.ObserveWebhookEvent("invalid", "error")
		writeAck(w, "Processing error")
		return
	}

	h.logger.Info("webhook received", "event", evt.Event, "call_id", evt.CallID)
	writeAck(w, "")

	// The request context dies with the response; processing continues
	// on its own context.
	go h.process(evt)
}

func (h *Handler) process(evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic while processing webhook",
				"panic", rec,
				"event", evt.Event,
				"call_id", evt.CallID,
			)
			h.metrics.ObserveWebhookEvent(evt.Event, "error")
		}
	}()

	start := time.Now()
	if err := h.processor.Process(context.Background(), evt); err != nil {
		h.logger.Error("error processing webhook",
			"error", err,
			"event", evt.Event,
			"call_id", evt.CallID,
		)
		h.metrics.ObserveWebhookEvent(evt.Event, "error")
		return
	}
	h.metrics.ObserveWebhookLatency(evt.Event, time.Since(start).Seconds())
}

// HealthCheck returns service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeAck(w http.ResponseWriter, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ackResponse{Received: true, Error: errMsg})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
