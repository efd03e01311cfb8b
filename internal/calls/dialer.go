package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	observemetrics "github.com/wolfman30/ai-voice-outbound/internal/observability/metrics"
	"github.com/wolfman30/ai-voice-outbound/internal/retell"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// CallOptions describes one outbound call to a business.
type CallOptions struct {
	PhoneNumber   string
	BusinessName  string
	ContactName   string
	Purpose       string
	CustomMessage string
	// ContactID links the call back to a CRM contact so the call.ended
	// webhook can record the outcome. Without it the outcome is dropped.
	ContactID string
}

// Call purposes understood by the voice agent.
const (
	PurposePartnership    = "partnership_discussion"
	PurposeServiceInquiry = "service_inquiry"
	PurposeFollowUp       = "follow_up"
	PurposeCustom         = "custom"
)

// callClient is the slice of the Retell client the dialer needs.
type callClient interface {
	CreateCallSession(ctx context.Context, req retell.CreateCallRequest) (*retell.CallSession, error)
	GetCallDetails(ctx context.Context, callID string) (*retell.CallDetails, error)
}

// Dialer initiates outbound calls and tracks them to completion.
type Dialer struct {
	client       callClient
	agentID      string
	logger       *logging.Logger
	metrics      *observemetrics.CallMetrics
	pollInterval time.Duration
	maxWait      time.Duration
}

// DialerConfig wires a Dialer for one voice agent.
type DialerConfig struct {
	Client  callClient
	AgentID string
	Logger  *logging.Logger
	Metrics *observemetrics.CallMetrics
	// PollInterval and MaxWait bound status polling in WaitForCompletion.
	PollInterval time.Duration
	MaxWait      time.Duration
}

func NewDialer(cfg DialerConfig) *Dialer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = 10 * time.Minute
	}
	return &Dialer{
		client:       cfg.Client,
		agentID:      cfg.AgentID,
		logger:       logger,
		metrics:      cfg.Metrics,
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}
}

// MakeOutboundCall dispatches a call to a business. The call's context
// travels in the metadata bag and comes back verbatim on webhook events.
func (d *Dialer) MakeOutboundCall(ctx context.Context, opts CallOptions) (*retell.CallSession, error) {
	d.logger.Info("initiating outbound call",
		"phone_number", opts.PhoneNumber,
		"business_name", opts.BusinessName,
		"purpose", opts.Purpose,
	)

	contactName := opts.ContactName
	if contactName == "" {
		contactName = "Unknown"
	}
	purpose := opts.Purpose
	if purpose == "" {
		purpose = PurposePartnership
	}
	metadata := map[string]string{
		retell.MetaBusinessName:  opts.BusinessName,
		retell.MetaContactName:   contactName,
		retell.MetaCallPurpose:   purpose,
		retell.MetaCustomMessage: opts.CustomMessage,
	}
	if opts.ContactID != "" {
		metadata[retell.MetaContactID] = opts.ContactID
	}

	session, err := d.client.CreateCallSession(ctx, retell.CreateCallRequest{
		AgentID:  d.agentID,
		ToNumber: opts.PhoneNumber,
		Metadata: metadata,
	})
	if err != nil {
		d.logger.Error("failed to initiate call", "error", err, "phone_number", opts.PhoneNumber)
		d.metrics.ObserveOutboundCall("error")
		return nil, err
	}

	d.logger.Info("call initiated", "call_id", session.CallID, "status", session.Status)
	d.metrics.ObserveOutboundCall(session.Status)
	return session, nil
}

// CallStatus returns the provider's current status string for a call.
func (d *Dialer) CallStatus(ctx context.Context, callID string) (string, error) {
	details, err := d.client.GetCallDetails(ctx, callID)
	if err != nil {
		d.logger.Error("failed to get call status", "error", err, "call_id", callID)
		return "", err
	}
	return details.Status, nil
}

// terminalStatuses end the WaitForCompletion polling loop.
var terminalStatuses = map[string]struct{}{
	"completed": {},
	"failed":    {},
	"no-answer": {},
}

// ErrCallNotCompleted is returned when a call does not reach a terminal
// status within the polling window.
var ErrCallNotCompleted = errors.New("call did not complete within the wait window")

// WaitForCompletion polls the provider until the call reaches a terminal
// status or the configured wait window elapses.
func (d *Dialer) WaitForCompletion(ctx context.Context, callID string) (string, error) {
	deadline := time.Now().Add(d.maxWait)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		status, err := d.CallStatus(ctx, callID)
		if err != nil {
			return "", err
		}
		d.logger.Info("call status update", "call_id", callID, "status", status)
		if _, terminal := terminalStatuses[status]; terminal {
			return status, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: call %s after %s", ErrCallNotCompleted, callID, d.maxWait)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
