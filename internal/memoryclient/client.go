// Package memoryclient reads the behavioral-memory service's per-user
// summary. The summary feeds memory-based generators; an unreachable service
// degrades those generators to silence rather than failing evaluation.
package memoryclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// Client calls the memory service REST API.
type Client struct {
	client *resty.Client
}

// New creates a memory client against the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{client: c}
}

// Summary fetches the user's behavioral-memory summary.
func (c *Client) Summary(ctx context.Context, userID string) (model.MemorySummary, error) {
	var summary model.MemorySummary

	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/users/%s/memory/summary", userID))
	if err != nil {
		return summary, fmt.Errorf("memory request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// no memory yet for this user; an empty summary is valid
		return summary, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return summary, fmt.Errorf("memory status %d: %s", resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		return summary, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}
