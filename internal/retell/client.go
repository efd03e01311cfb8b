package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/ai-voice-outbound/pkg/logging"
)

const (
	defaultBaseURL   = "https://api.retell.ai"
	defaultUserAgent = "ai-voice-outbound/0.1"
)

// Config controls how the Retell client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// Client wraps the Retell REST endpoints used for outbound calling.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("retell: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// CreateCallSession dispatches an outbound call. The returned session is
// always "queued": Retell reports the true call state asynchronously via
// webhook events, never in this response.
func (c *Client) CreateCallSession(ctx context.Context, req CreateCallRequest) (*CallSession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(struct {
		AgentID    string            `json:"agent_id"`
		ToNumber   string            `json:"to_number"`
		FromNumber string            `json:"from_number,omitempty"`
		Metadata   map[string]string `json:"metadata,omitempty"`
	}{
		AgentID:    req.AgentID,
		ToNumber:   req.ToNumber,
		FromNumber: req.FromNumber,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("retell: marshal create-call body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/create-call", nil, body)
	if err != nil {
		return nil, err
	}
	var resp struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("retell: decode create-call response: %w", err)
	}
	c.logger.Info("call session created", "call_id", resp.CallID)
	return &CallSession{CallID: resp.CallID, Status: StatusQueued}, nil
}

// GetCallDetails fetches the provider's current record of a call.
func (c *Client) GetCallDetails(ctx context.Context, callID string) (*CallDetails, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, errors.New("retell: call id required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "/get-call/"+url.PathEscape(callID), nil, nil)
	if err != nil {
		return nil, err
	}
	var details CallDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("retell: decode call details: %w", err)
	}
	return &details, nil
}

// EndCall terminates an active call.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	if strings.TrimSpace(callID) == "" {
		return errors.New("retell: call id required")
	}
	body, err := json.Marshal(map[string]string{"call_id": callID})
	if err != nil {
		return fmt.Errorf("retell: marshal end-call body: %w", err)
	}
	if _, err := c.invoke(ctx, http.MethodPost, "/end-call", nil, body); err != nil {
		return err
	}
	c.logger.Info("call ended", "call_id", callID)
	return nil
}

// AvailablePhoneNumbers lists numbers that can originate outbound calls,
// optionally filtered by area code.
func (c *Client) AvailablePhoneNumbers(ctx context.Context, areaCode string) ([]string, error) {
	var query url.Values
	if strings.TrimSpace(areaCode) != "" {
		query = url.Values{}
		query.Set("area_code", areaCode)
	}
	data, err := c.invoke(ctx, http.MethodGet, "/get-available-phone-numbers", query, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		PhoneNumbers []string `json:"phone_numbers"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("retell: decode phone numbers: %w", err)
	}
	return resp.PhoneNumbers, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("retell: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("retell: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("retell: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		c.logger.Error("retell API error",
			"status", resp.StatusCode,
			"path", path,
			"error", apiErr,
		)
		return nil, apiErr
	}
	return data, nil
}

type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("retell: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("retell: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &apiError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	parsed.StatusCode = status
	return &parsed
}
