// Package fusion reads cross-source context signals (weather, calendar
// conflicts, device state) from the context-fusion service.
package fusion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Client calls the context-fusion REST API.
type Client struct {
	client *resty.Client
}

// New creates a fusion client against the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{client: c}
}

type signalsResponse struct {
	Signals []model.FusionSignal `json:"signals"`
}

// Signals fetches the user's current fused signals.
func (c *Client) Signals(ctx context.Context, userID string) ([]model.FusionSignal, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/users/%s/signals", userID))
	if err != nil {
		return nil, fmt.Errorf("fusion request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fusion status %d: %s", resp.StatusCode(), resp.String())
	}

	var sr signalsResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return sr.Signals, nil
}
