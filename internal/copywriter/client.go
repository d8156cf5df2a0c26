// Package copywriter phrases notification copy through a local
// text-generation model. It is wording only: decision logic never depends on
// the model, and callers fall back to template copy when it is unavailable.
package copywriter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client calls an Ollama-compatible generate API.
type Client struct {
	client *resty.Client
	model  string
}

// New creates a copywriter client. baseURL points at the model server, model
// names the generation model to use.
func New(baseURL, model string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Phrase generates one short piece of copy for the prompt.
func (c *Client) Phrase(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	reqBody := generateRequest{Model: c.model, Prompt: prompt, Stream: false}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("copywriter request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("copywriter status %d: %s", resp.StatusCode(), resp.String())
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(gr.Response), nil
}

// HealthPing implements health.Pinger for the copywriter backend.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("copywriter ping: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("copywriter ping status %d", resp.StatusCode())
	}
	return nil
}
