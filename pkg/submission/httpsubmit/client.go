// Package httpsubmit submits registration payloads to a remote HTTP endpoint.
// The wire format is the OpenAPI document embedded in this package; outgoing
// bodies are checked against it before they leave the process. Every request
// carries the wizard's idempotency key so retries after a failure never
// register twice.
package httpsubmit

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

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-regwizard/pkg/submission"
)

// IdempotencyHeader carries the draft's idempotency key.
const IdempotencyHeader = "Idempotency-Key"

const maxResponseBytes = 1 << 20

// Client is a submission.Submitter backed by HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	schema     *openapi3.Schema
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// New returns a client posting to endpoint.
func New(endpoint string, options ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("httpsubmit: endpoint is required")
	}
	schema, err := loadPayloadSchema(context.Background())
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  "go-regwizard",
		schema:     schema,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

var _ submission.Submitter = (*Client)(nil)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Submit posts payload and decodes the receipt.
func (c *Client) Submit(ctx context.Context, payload submission.Payload, key string) (submission.Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "encode payload", Err: err}
	}
	if err := conform(c.schema, body); err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "payload does not match the registration schema", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyHeader, key)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "registration service unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return submission.Receipt{}, &submission.FailedError{Reason: "read response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var receipt submission.Receipt
		if err := json.Unmarshal(raw, &receipt); err != nil {
			return submission.Receipt{}, &submission.FailedError{Reason: "decode receipt", Err: err}
		}
		if strings.TrimSpace(receipt.ConfirmationID) == "" {
			return submission.Receipt{}, &submission.FailedError{Reason: "receipt without confirmation id"}
		}
		return receipt, nil
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict:
		var payload errorResponse
		_ = json.Unmarshal(raw, &payload)
		reason := strings.TrimSpace(payload.Message)
		if reason == "" {
			reason = fmt.Sprintf("registration refused (status %d)", resp.StatusCode)
		}
		return submission.Receipt{}, &submission.FailedError{Reason: reason, Fields: payload.Errors}
	default:
		return submission.Receipt{}, &submission.FailedError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
}
