package retell

import (
	"errors"
	"strings"
)

// CreateCallRequest describes an outbound call to dispatch through Retell.
type CreateCallRequest struct {
	AgentID    string
	ToNumber   string
	FromNumber string
	Metadata   map[string]string
}

func (r CreateCallRequest) validate() error {
	if strings.TrimSpace(r.AgentID) == "" {
		return errors.New("retell: agent id required")
	}
	if strings.TrimSpace(r.ToNumber) == "" {
		return errors.New("retell: destination number required")
	}
	return nil
}

// CallSession is the synchronous view of a dispatched call. Status is
// always "queued" when the session is created; the real lifecycle is
// reported later through webhook events.
type CallSession struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// StatusQueued is the only status a freshly created session carries.
const StatusQueued = "queued"

// TranscriptEntry is a single utterance within a call transcript. Entries
// arrive in chronological order and are never reordered.
type TranscriptEntry struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

// CallDetails is the provider's full record of one call. Status carries
// the raw provider vocabulary, which is wider than our internal one.
type CallDetails struct {
	CallID         string            `json:"call_id"`
	Status         string            `json:"status"`
	ToNumber       string            `json:"to_number"`
	FromNumber     string            `json:"from_number"`
	AgentID        string            `json:"agent_id"`
	StartTimestamp *int64            `json:"start_timestamp,omitempty"`
	EndTimestamp   *int64            `json:"end_timestamp,omitempty"`
	Transcript     []TranscriptEntry `json:"transcript,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Metadata keys the caller attaches at call-creation time. The bag is
// open-ended; these are the keys this service reads back from webhooks.
const (
	MetaBusinessName  = "business_name"
	MetaContactName   = "contact_name"
	MetaCallPurpose   = "call_purpose"
	MetaContactID     = "contact_id"
	MetaCustomMessage = "custom_message"
)
