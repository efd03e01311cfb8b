package calls

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/ai-voice-outbound/internal/retell"
)

func newTestRouter(dialer *Dialer) http.Handler {
	h := NewHandler(dialer, nil)
	r := chi.NewRouter()
	r.Post("/calls", h.CreateCall)
	r.Get("/calls/{callID}", h.GetCallStatus)
	return r
}

func TestCreateCallSuccess(t *testing.T) {
	client := &fakeCallClient{}
	router := newTestRouter(newTestDialer(client))

	body := `{"phone_number":"+15551234567","business_name":"Acme Remodeling","contact_id":"ct1"}`
	req := httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d body=%s", rec.Code, rec.Body.String())
	}
	var session retell.CallSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.CallID != "call_1" || session.Status != retell.StatusQueued {
		t.Fatalf("unexpected session: %#v", session)
	}
	if client.createReq.Metadata[retell.MetaContactID] != "ct1" {
		t.Fatalf("expected contact id in metadata")
	}
}

func TestCreateCallValidation(t *testing.T) {
	router := newTestRouter(newTestDialer(&fakeCallClient{}))

	for name, body := range map[string]string{
		"malformed json": `{`,
		"missing phone":  `{"business_name":"Acme"}`,
		"missing name":   `{"phone_number":"+1555"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateCallProviderFailure(t *testing.T) {
	client := &fakeCallClient{createErr: errors.New("provider down")}
	router := newTestRouter(newTestDialer(client))

	body := `{"phone_number":"+15551234567","business_name":"Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGetCallStatus(t *testing.T) {
	client := &fakeCallClient{statuses: []string{"in-progress"}}
	router := newTestRouter(newTestDialer(client))

	req := httptest.NewRequest(http.MethodGet, "/calls/call_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["call_id"] != "call_1" || resp["status"] != "in-progress" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestGetCallStatusWaitPollsToTerminal(t *testing.T) {
	client := &fakeCallClient{statuses: []string{"ringing", "in-progress", "completed"}}
	router := newTestRouter(newTestDialer(client))

	req := httptest.NewRequest(http.MethodGet, "/calls/call_1?wait=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "completed" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if client.statusIdx != 3 {
		t.Fatalf("expected three polls, got %d", client.statusIdx)
	}
}

func TestGetCallStatusWaitTimesOut(t *testing.T) {
	client := &fakeCallClient{statuses: []string{"ringing"}}
	dialer := NewDialer(DialerConfig{
		Client:       client,
		AgentID:      "agent_1",
		MaxWait:      10 * time.Millisecond,
		PollInterval: time.Millisecond,
	})
	router := newTestRouter(dialer)

	req := httptest.NewRequest(http.MethodGet, "/calls/call_1?wait=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}

func TestGetCallStatusProviderFailure(t *testing.T) {
	client := &fakeCallClient{detailsErr: context.DeadlineExceeded}
	router := newTestRouter(newTestDialer(client))

	req := httptest.NewRequest(http.MethodGet, "/calls/call_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
