package retell

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Config{APIKey: "key_test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected api key validation error")
	}
	client, err := New(Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", client.baseURL)
	}
}

func TestCreateCallSessionAlwaysQueued(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-call" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key_test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["agent_id"] != "agent_1" || req["to_number"] != "+15551234567" {
			t.Fatalf("unexpected request body: %s", string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		// Provider reports an in-progress status immediately, but the
		// session we return is queued until webhooks say otherwise.
		io.WriteString(w, `{"call_id":"call_abc","status":"registered"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	session, err := client.CreateCallSession(context.Background(), CreateCallRequest{
		AgentID:  "agent_1",
		ToNumber: "+15551234567",
		Metadata: map[string]string{MetaBusinessName: "Acme Remodeling"},
	})
	if err != nil {
		t.Fatalf("create call session: %v", err)
	}
	if session.CallID != "call_abc" {
		t.Fatalf("unexpected call id %s", session.CallID)
	}
	if session.Status != StatusQueued {
		t.Fatalf("expected queued status, got %s", session.Status)
	}
}

func TestCreateCallSessionValidation(t *testing.T) {
	client, err := New(Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateCallSession(context.Background(), CreateCallRequest{ToNumber: "+1555"}); err == nil {
		t.Fatalf("expected agent id validation error")
	}
	if _, err := client.CreateCallSession(context.Background(), CreateCallRequest{AgentID: "a"}); err == nil {
		t.Fatalf("expected to-number validation error")
	}
}

func TestGetCallDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-call/call_abc" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"call_id": "call_abc",
			"status": "completed",
			"to_number": "+15551234567",
			"from_number": "+15557654321",
			"agent_id": "agent_1",
			"start_timestamp": 1000000,
			"end_timestamp": 1005500,
			"transcript": [
				{"role": "agent", "content": "Hi", "timestamp": 0},
				{"role": "user", "content": "Hello", "timestamp": 1200}
			],
			"metadata": {"contact_id": "ct1"}
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	details, err := client.GetCallDetails(context.Background(), "call_abc")
	if err != nil {
		t.Fatalf("get call details: %v", err)
	}
	if details.Status != "completed" || details.AgentID != "agent_1" {
		t.Fatalf("unexpected details: %#v", details)
	}
	if details.StartTimestamp == nil || *details.StartTimestamp != 1000000 {
		t.Fatalf("expected start timestamp decoded")
	}
	if len(details.Transcript) != 2 || details.Transcript[1].Role != "user" {
		t.Fatalf("unexpected transcript: %#v", details.Transcript)
	}
	if details.Metadata[MetaContactID] != "ct1" {
		t.Fatalf("expected metadata contact id, got %v", details.Metadata)
	}
}

func TestEndCall(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/end-call" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.EndCall(context.Background(), "call_abc"); err != nil {
		t.Fatalf("end call: %v", err)
	}
	if !strings.Contains(gotBody, `"call_id":"call_abc"`) {
		t.Fatalf("unexpected end-call body: %s", gotBody)
	}
}

func TestAvailablePhoneNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-available-phone-numbers" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("area_code"); got != "415" {
			t.Fatalf("expected area code filter, got %q", got)
		}
		io.WriteString(w, `{"phone_numbers":["+14155550001","+14155550002"]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	numbers, err := client.AvailablePhoneNumbers(context.Background(), "415")
	if err != nil {
		t.Fatalf("available phone numbers: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != "+14155550001" {
		t.Fatalf("unexpected numbers: %v", numbers)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"invalid agent"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetCallDetails(context.Background(), "call_bad")
	if err == nil {
		t.Fatalf("expected API error")
	}
	if !strings.Contains(err.Error(), "invalid agent") || !strings.Contains(err.Error(), "422") {
		t.Fatalf("unexpected error: %v", err)
	}
}
