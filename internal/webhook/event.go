package webhook

import "github.com/wolfman30/ai-voice-outbound/internal/retell"

// Event types Retell delivers over the webhook. Anything outside this
// set is logged and dropped.
const (
	EventCallStarted    = "call.started"
	EventCallEnded      = "call.ended"
	EventCallTranscript = "call.transcript"
	EventCallUpdated    = "call.updated"
)

// Event is the webhook envelope for one call-lifecycle notification.
// The envelope itself is never schema-rejected: missing optional fields
// are simply treated as absent.
type Event struct {
	Event       string              `json:"event"`
	CallID      string              `json:"call_id"`
	CallDetails *retell.CallDetails `json:"call_details,omitempty"`
}
