package moolre

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.moolre.com"
	defaultSenderID             = "PRODATAWLD"
	sendPath                    = "open/sms/send"
	smsTypeText                 = 1
	statusAccepted              = 1
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("moolre api key is required")

// Client sends transactional SMS through the Moolre gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	senderID   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithSenderID overrides the alphanumeric sender shown on handsets.
func WithSenderID(senderID string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(senderID)
		if trimmed != "" {
			c.senderID = trimmed
		}
	}
}

// WithTimeout replaces the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the Moolre client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		senderID:   defaultSenderID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type message struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type sendRequest struct {
	Type     int       `json:"type"`
	SenderID string    `json:"senderid"`
	Messages []message `json:"messages"`
}

// SendResult is the gateway's verdict on a send request.
type SendResult struct {
	HTTPStatus int
	Status     int
	Message    string
}

// Send submits one text message. The gateway accepts a message only when it
// answers 2xx with "status": 1; anything else is returned as an error.
func (c *Client) Send(ctx context.Context, recipient, text string) (*SendResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "moolre client not configured")
	}
	if strings.TrimSpace(recipient) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}

	payload, err := json.Marshal(sendRequest{
		Type:     smsTypeText,
		SenderID: c.senderID,
		Messages: []message{{Recipient: recipient, Message: text}},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal sms request")
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), sendPath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sms request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-API-VASKEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sms request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	result := &SendResult{HTTPStatus: resp.StatusCode}

	var apiResp struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &apiResp)
	}
	result.Status = apiResp.Status
	result.Message = apiResp.Message

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), "sms request failed")
	}
	if apiResp.Status != statusAccepted {
		return result, pkgerrors.New(pkgerrors.CodeDependency, "sms rejected by gateway").
			WithDetails(map[string]any{"status": apiResp.Status, "message": apiResp.Message})
	}
	return result, nil
}
