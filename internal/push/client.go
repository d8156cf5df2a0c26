// Package push delivers surfaced notifications to the user's devices through
// the push gateway. Delivery is fire-and-forget: a failed push is logged and
// the notification is still marked shown, so it will not be re-sent.
package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Client calls the push gateway REST API.
type Client struct {
	client *resty.Client
}

// New creates a push client against the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{client: c}
}

type pushRequest struct {
	UserID       string             `json:"userId"`
	Notification model.Notification `json:"notification"`
}

// Send delivers one notification to the user's devices.
func (c *Client) Send(ctx context.Context, userID string, n model.Notification) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&pushRequest{UserID: userID, Notification: n}).
		Post("/api/push")
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("push status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
