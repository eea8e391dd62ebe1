package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultGA4Endpoint = "https://www.google-analytics.com/mp/collect"

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GA4Config holds Measurement Protocol credentials.
type GA4Config struct {
	MeasurementID string
	APISecret     string
	Endpoint      string
}

// GA4 posts analytics-destination events to the GA4 Measurement Protocol.
// With no measurement id it behaves like Noop.
type GA4 struct {
	cfg        GA4Config
	httpClient HTTPClient
}

func NewGA4(httpClient HTTPClient, cfg GA4Config) *GA4 {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultGA4Endpoint
	}
	return &GA4{cfg: cfg, httpClient: httpClient}
}

// Enabled reports whether credentials are configured.
func (g *GA4) Enabled() bool {
	return g != nil && g.cfg.MeasurementID != "" && g.cfg.APISecret != ""
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

func (g *GA4) Track(ctx context.Context, evt Event) error {
	if !g.Enabled() || evt.Destination != DestinationAnalytics {
		return nil
	}
	clientID := evt.ClientID
	if clientID == "" {
		clientID = "anonymous"
	}
	body, err := json.Marshal(ga4Payload{
		ClientID: clientID,
		Events:   []ga4Event{{Name: evt.Name, Params: evt.Params}},
	})
	if err != nil {
		return fmt.Errorf("tracking: encode ga4 event: %w", err)
	}

	q := url.Values{}
	q.Set("measurement_id", g.cfg.MeasurementID)
	q.Set("api_secret", g.cfg.APISecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tracking: build ga4 request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracking: ga4 post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("tracking: ga4 returned status %d", resp.StatusCode)
	}
	return nil
}
