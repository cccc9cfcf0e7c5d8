// Package client talks to the JSON API of a running beacon server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// envelope mirrors the server reply wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is returned when the server answers with a failure envelope or a
// non-2xx status.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("beacon api: %s (%d): %s", e.Message, e.Status, e.Detail)
	}
	return fmt.Sprintf("beacon api: %s (%d)", e.Message, e.Status)
}

// ToastRequest is the body of a toast push.
type ToastRequest struct {
	Category    string `json:"category,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	Persistent  bool   `json:"persistent,omitempty"`
	Log         bool   `json:"log,omitempty"`
}

// ToastCreated identifies the toast, and optionally the log entry, a push
// produced.
type ToastCreated struct {
	ID             string `json:"id"`
	NotificationID string `json:"notification_id,omitempty"`
}

// GeneratorStatus is the reply of the generator stats route.
type GeneratorStatus struct {
	Running bool `json:"running"`
	Stats   struct {
		Total      int            `json:"total"`
		Lottery    int            `json:"lottery"`
		ByCategory map[string]int `json:"by_category"`
		ByTier     map[string]int `json:"by_tier"`
	} `json:"stats"`
	LotteryFraction float64 `json:"lottery_fraction"`
}

// Client is a thin API client. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRetries sets how many times failed requests are retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.SetRetryCount(n) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the server at baseURL, e.g. http://127.0.0.1:7777.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10*time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(250*time.Millisecond).
			SetRetryMaxWaitTime(2*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PushToast creates a toast on the server.
func (c *Client) PushToast(ctx context.Context, req ToastRequest) (ToastCreated, error) {
	var out ToastCreated
	err := c.do(ctx, resty.MethodPost, "/api/toasts", req, &out)
	return out, err
}

// UnreadCount returns the number of unread log entries.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Unread int `json:"unread"`
	}
	err := c.do(ctx, resty.MethodGet, "/api/notifications/unread-count", nil, &out)
	return out.Unread, err
}

// Generator returns the generator state and counters.
func (c *Client) Generator(ctx context.Context) (GeneratorStatus, error) {
	var out GeneratorStatus
	err := c.do(ctx, resty.MethodGet, "/api/generator/stats", nil, &out)
	return out, err
}

// SetGenerator starts or stops the generator.
func (c *Client) SetGenerator(ctx context.Context, running bool) error {
	path := "/api/generator/stop"
	if running {
		path = "/api/generator/start"
	}
	return c.do(ctx, resty.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var env envelope
	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("api call")

	if resp.IsError() || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{Status: resp.StatusCode(), Message: msg, Detail: env.Error}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", path, err)
	}
	return nil
}
