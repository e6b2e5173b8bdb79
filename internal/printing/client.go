package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrAgentUnavailable wraps every failure to reach or use the printer agent.
var ErrAgentUnavailable = errors.New("printer agent unavailable")

// Client calls the printer agent running next to the cashier's machine.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the agent at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Print sends a receipt job.
func (c *Client) Print(ctx context.Context, job Job) error {
	return c.post(ctx, "/print", job)
}

// Display sends two lines to the pole display.
func (c *Client) Display(ctx context.Context, line1, line2 string) error {
	return c.post(ctx, "/display", map[string]string{"line1": line1, "line2": line2})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	if c.BaseURL == "" {
		return errors.Wrap(ErrAgentUnavailable, "no printer agent URL configured")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(ErrAgentUnavailable, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(ErrAgentUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &payload)
		if payload.Error == "" {
			payload.Error = resp.Status
		}
		return errors.Wrap(ErrAgentUnavailable, fmt.Sprintf("agent answered %d: %s", resp.StatusCode, payload.Error))
	}
	return nil
}
