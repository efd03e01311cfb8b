package webhook

import (
	"context"
	"math"
	"strings"

	"github.com/wolfman30/ai-voice-outbound/internal/ghl"
	observemetrics "github.com/wolfman30/ai-voice-outbound/internal/observability/metrics"
	"github.com/wolfman30/ai-voice-outbound/internal/retell"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// transcriptPreviewLen bounds how much of a live transcript entry makes
// it into the logs.
const transcriptPreviewLen = 50

// contactUpdater is the slice of the CRM adapter the processor needs.
// The implementation swallows its own failures; the call never reports
// an error back into the webhook path.
type contactUpdater interface {
	UpdateContactWithCallOutcome(ctx context.Context, contactID string, outcome ghl.CallOutcome)
}

// Processor classifies webhook events and drives their side effects.
// It holds no state across events: every invocation is an independent,
// best-effort, at-most-once dispatch.
type Processor struct {
	crm     contactUpdater
	logger  *logging.Logger
	metrics *observemetrics.CallMetrics
}

// ProcessorConfig wires a Processor.
type ProcessorConfig struct {
	CRM     contactUpdater
	Logger  *logging.Logger
	Metrics *observemetrics.CallMetrics
}

// NewProcessor creates a webhook event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Processor{
		crm:     cfg.CRM,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Process dispatches one event to its handler. Unknown event types are
// logged and dropped; they are not errors.
func (p *Processor) Process(ctx context.Context, evt Event) error {
	switch evt.Event {
	case EventCallStarted:
		p.handleCallStarted(evt)
	case EventCallEnded:
		p.handleCallEnded(ctx, evt)
	case EventCallTranscript:
		p.handleCallTranscript(evt)
	case EventCallUpdated:
		p.handleCallUpdated(evt)
	default:
		p.logger.Warn("unknown webhook event type", "event", evt.Event, "call_id", evt.CallID)
		p.metrics.ObserveWebhookEvent(evt.Event, "unknown")
		return nil
	}
	p.metrics.ObserveWebhookEvent(evt.Event, "handled")
	return nil
}

func (p *Processor) handleCallStarted(evt Event) {
	p.logger.Info("call started", "call_id", evt.CallID)

	if evt.CallDetails == nil || evt.CallDetails.Metadata == nil {
		return
	}
	metadata := evt.CallDetails.Metadata
	p.logger.Info("outbound call initiated",
		"business_name", metadata[retell.MetaBusinessName],
		"contact_name", metadata[retell.MetaContactName],
		"purpose", metadata[retell.MetaCallPurpose],
	)
}

// handleCallEnded is the terminal handler and the only one with a side
// effect beyond logging. A missing call_details block is a defined
// no-op, not an error.
func (p *Processor) handleCallEnded(ctx context.Context, evt Event) {
	p.logger.Info("call ended", "call_id", evt.CallID)

	details := evt.CallDetails
	if details == nil {
		return
	}

	status := mapCallStatus(details.Status)
	transcript := flattenTranscript(details.Transcript)

	logArgs := []any{"call_id", evt.CallID, "status", status}
	if duration, ok := callDuration(details); ok {
		logArgs = append(logArgs, "duration_seconds", duration)
	}
	p.logger.Info("call completed", logArgs...)

	// Without a contact_id there is no way to correlate the call to a
	// CRM contact; the outcome is dropped silently.
	contactID := details.Metadata[retell.MetaContactID]
	if contactID == "" || p.crm == nil {
		return
	}

	business := details.Metadata[retell.MetaBusinessName]
	if business == "" {
		business = "unknown business"
	}
	p.crm.UpdateContactWithCallOutcome(ctx, contactID, ghl.CallOutcome{
		CallID:     evt.CallID,
		Status:     status,
		Transcript: transcript,
		Notes:      "Call with " + business,
	})
	p.metrics.ObserveContactUpdate(string(status))
}

// handleCallTranscript logs the most recent utterance of a live
// transcript, truncated so oversized content never floods the logs.
func (p *Processor) handleCallTranscript(evt Event) {
	if evt.CallDetails == nil || len(evt.CallDetails.Transcript) == 0 {
		return
	}
	last := evt.CallDetails.Transcript[len(evt.CallDetails.Transcript)-1]
	p.logger.Debug("transcript update",
		"call_id", evt.CallID,
		"role", last.Role,
		"content", previewContent(last.Content, transcriptPreviewLen),
	)
}

func (p *Processor) handleCallUpdated(evt Event) {
	status := ""
	if evt.CallDetails != nil {
		status = evt.CallDetails.Status
	}
	p.logger.Info("call updated", "call_id", evt.CallID, "status", status)
}

// mapCallStatus maps the provider's status vocabulary onto the internal
// one. The mapping is total: unknown strings fall through to failed.
func mapCallStatus(providerStatus string) ghl.CallStatus {
	switch providerStatus {
	case "completed":
		return ghl.CallCompleted
	case "no-answer", "busy":
		return ghl.CallNoAnswer
	default:
		return ghl.CallFailed
	}
}

// flattenTranscript renders a transcript as "role: content" lines in
// their original order.
func flattenTranscript(entries []retell.TranscriptEntry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Role+": "+entry.Content)
	}
	return strings.Join(lines, "\n")
}

// callDuration returns the call length in whole seconds, or false when
// either timestamp is missing. A missing duration is never reported as
// zero.
func callDuration(details *retell.CallDetails) (int64, bool) {
	if details.StartTimestamp == nil || details.EndTimestamp == nil {
		return 0, false
	}
	millis := *details.EndTimestamp - *details.StartTimestamp
	return int64(math.Round(float64(millis) / 1000.0)), true
}

func previewContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}
