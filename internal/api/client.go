// Copyright (c) 2025 Threadlinee
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the remote responder.
//
// Two exchanges exist: session initiation (no request body, returns the
// conversation id and a greeting) and the message exchange (message +
// conversation id + moderation flag + optional attachment payload). The
// client enforces a bounded timeout on every exchange; a hung transport
// surfaces as a classified timeout error rather than an indefinitely
// pending dispatch.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the responder client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeAuth
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeRemote
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "responder is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// TypeOf extracts the error type from an error chain.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the responder client.
type ClientConfig struct {
	// BaseURL is the responder base URL (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout bounds each exchange (default: 60s)
	Timeout time.Duration

	// RequestsPerMinute paces outbound exchanges (default: 30)
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:5000",
		Timeout:           60 * time.Second,
		RequestsPerMinute: 30,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the remote responder. Safe for
// concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a responder client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a responder client, filling defaults for any
// zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), config.RequestsPerMinute),
	}
}

// =============================================================================
// WIRE SHAPES
// =============================================================================

// SendRequest is the message-exchange request body.
type SendRequest struct {
	Message            string `json:"message"`
	ConversationID     string `json:"conversationId"`
	ProfanityDetected  bool   `json:"profanityDetected"`
	Attachment         []byte `json:"attachment,omitempty"`
	AttachmentName     string `json:"attachmentName,omitempty"`
	AttachmentMimeType string `json:"attachmentMimeType,omitempty"`
}

type newChatResponse struct {
	ConversationID string `json:"conversationId"`
	Greeting       string `json:"greeting"`
}

type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// =============================================================================
// SESSION INITIATION EXCHANGE
// =============================================================================

// NewConversation performs the session-initiation exchange and returns the
// responder-issued conversation id and greeting.
func (c *Client) NewConversation(ctx context.Context) (id, greeting string, err error) {
	body, err := c.post(ctx, "/api/chat/new", nil)
	if err != nil {
		return "", "", err
	}

	var resp newChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed initiation response", Cause: err}
	}
	if resp.ConversationID == "" {
		return "", "", &ClientError{Type: ErrTypeInvalidResponse, Message: "initiation response carries no conversation id"}
	}
	return resp.ConversationID, resp.Greeting, nil
}

// =============================================================================
// MESSAGE EXCHANGE
// =============================================================================

// Send performs the message exchange and returns the responder's reply.
func (c *Client) Send(ctx context.Context, req SendRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	body, err := c.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed responder body", Cause: err}
	}
	if resp.Error != "" {
		return "", &ClientError{Type: classifyRemote(resp.Error), Message: resp.Error}
	}
	return resp.Response, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// post issues one bounded, rate-paced POST and returns the body of a
// success response. Non-2xx responses are surfaced as typed errors with
// any remote error text attached.
func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "request cancelled while pacing", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "responder is unreachable", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read responder body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := "responder returned " + resp.Status
		var remote chatResponse
		if json.Unmarshal(body, &remote) == nil && remote.Error != "" {
			message = remote.Error
		}
		errType := classifyRemote(message)
		if errType == ErrTypeRemote && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			errType = ErrTypeAuth
		}
		return nil, &ClientError{Type: errType, Message: message}
	}

	return body, nil
}
