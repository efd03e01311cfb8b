package calls

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

// Handler exposes outbound calling over HTTP.
type Handler struct {
	dialer *Dialer
	logger *logging.Logger
}

// NewHandler creates a calls HTTP handler.
func NewHandler(dialer *Dialer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dialer: dialer, logger: logger}
}

type createCallRequest struct {
	PhoneNumber   string `json:"phone_number"`
	BusinessName  string `json:"business_name"`
	ContactName   string `json:"contact_name,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	CustomMessage string `json:"custom_message,omitempty"`
	ContactID     string `json:"contact_id,omitempty"`
}

// CreateCall handles POST /calls: dispatch one outbound call.
func (h *Handler) CreateCall(w http.ResponseWriter, r *http.Request) {
	var req createCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.BusinessName) == "" {
		writeJSONError(w, http.StatusBadRequest, "phone_number and business_name are required")
		return
	}

	session, err := h.dialer.MakeOutboundCall(r.Context(), CallOptions{
		PhoneNumber:   req.PhoneNumber,
		BusinessName:  req.BusinessName,
		ContactName:   req.ContactName,
		Purpose:       req.Purpose,
		CustomMessage: req.CustomMessage,
		ContactID:     req.ContactID,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "failed to initiate call")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(session)
}

// GetCallStatus handles GET /calls/{callID}: the provider's current
// status for one call. With ?wait=true it polls until the call reaches
// a terminal status or the configured wait window elapses.
func (h *Handler) GetCallStatus(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	if strings.TrimSpace(callID) == "" {
		writeJSONError(w, http.StatusBadRequest, "missing call id")
		return
	}

	var (
		status string
		err    error
	)
	if r.URL.Query().Get("wait") == "true" {
		status, err = h.dialer.WaitForCompletion(r.Context(), callID)
	} else {
		status, err = h.dialer.CallStatus(r.Context(), callID)
	}
	if errors.Is(err, ErrCallNotCompleted) {
		writeJSONError(w, http.StatusGatewayTimeout, "call did not complete in time")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "failed to fetch call status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"call_id": callID,
		"status":  status,
	})
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
