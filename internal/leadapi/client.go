// Package leadapi talks to the lead intake endpoints that sit behind the form.
package leadapi

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/validation"
)

var tracer = otel.Tracer("leadform.internal.leadapi")

const (
	PartialPath = "/api/submit-partial"
	FormPath    = "/api/submit-form"

	defaultTimeout      = 10 * time.Second
	maxErrorBodyBytes   = 4 << 10
	partialFailedMsg    = "Failed to submit partial lead"
	submissionFailedMsg = "Failed to submit form"
)

// ErrInvalidPayload is returned when a request fails validation before sending.
var ErrInvalidPayload = errors.New("leadapi: invalid payload")

// PayloadError carries the failing fields of a rejected request. It matches
// ErrInvalidPayload with errors.Is.
type PayloadError struct {
	Details map[string]string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidPayload, e.Details)
}

func (e *PayloadError) Unwrap() error { return ErrInvalidPayload }

// APIError is a non-2xx answer from the intake endpoints.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines where the intake endpoints live.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client posts partial and complete leads.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	val        *validation.Validator
}

// New creates a client. A nil httpClient gets a default with cfg.Timeout.
func New(httpClient HTTPClient, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		val:        validation.New(),
	}
}

// PartialLead is the minimal early save.
type PartialLead struct {
	Address       string `json:"address" validate:"required"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Phone         string `json:"phone" validate:"required,phone"`
	Consent       bool   `json:"consent" validate:"required"`
	Timestamp     string `json:"timestamp" validate:"required"`
}

// PartialResult is the intake's answer to a partial save.
type PartialResult struct {
	LeadID string `json:"leadId"`
	Error  string `json:"error,omitempty"`
}

// SubmitPartial posts the partial lead and returns the assigned lead id.
func (c *Client) SubmitPartial(ctx context.Context, lead PartialLead) (PartialResult, error) {
	var out PartialResult
	if err := c.check(lead); err != nil {
		return out, err
	}
	status, body, err := c.post(ctx, PartialPath, lead)
	if err != nil {
		return out, err
	}
	if status < 200 || status > 299 {
		return out, upstreamError(status, body, partialFailedMsg)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("leadapi: decode partial response: %w", err)
	}
	return out, nil
}

// SubmitForm posts the complete lead record.
func (c *Client) SubmitForm(ctx context.Context, lead leads.LeadFormData) (leads.SubmissionResponse, error) {
	var out leads.SubmissionResponse
	if err := c.check(lead); err != nil {
		return out, err
	}
	status, body, err := c.post(ctx, FormPath, lead)
	if err != nil {
		return out, err
	}
	if status < 200 || status > 299 {
		return out, upstreamError(status, body, submissionFailedMsg)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("leadapi: decode form response: %w", err)
	}
	return out, nil
}

func (c *Client) check(payload any) error {
	if err := c.val.Struct(payload); err != nil {
		return &PayloadError{Details: c.val.Details(err)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	ctx, span := tracer.Start(ctx, "leadapi.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("leadapi.path", path)),
	)
	defer span.End()

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("leadapi: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("leadapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return 0, nil, fmt.Errorf("leadapi: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("leadapi: read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, body, nil
}

func upstreamError(status int, body []byte, fallback string) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := fallback
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	return &APIError{Status: status, Message: msg}
}
