// Package sheets talks to the spreadsheet that stores enrollments: it
// downloads published CSV exports and posts to the sheet's Apps Script
// webhook.
package sheets

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

	"github.com/trademax/academy-enrollment/internal/config"
	"github.com/trademax/academy-enrollment/internal/mailing"
	"github.com/trademax/academy-enrollment/internal/pkg/httpretry"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

var log = logger.New("sheets")

const (
	// DefaultMaxCSVBytes bounds a CSV export download.
	DefaultMaxCSVBytes = 32 << 20
	maxReplyBytes      = 1 << 20
)

var (
	// ErrCSVTooLarge means the export exceeded the client's size limit.
	ErrCSVTooLarge = errors.New("CSV export exceeds size limit")
	// ErrWebhookNotConfigured is returned by Submit when no webhook URL is set.
	ErrWebhookNotConfigured = errors.New("Google Sheets webhook is not configured")
	// ErrSubmitTimeout is returned when the webhook does not answer in time.
	ErrSubmitTimeout = errors.New("Request timeout - Google Sheets is not responding")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
}

// Client reads CSV exports and calls the webhook.
type Client struct {
	doer          httpretry.HTTPDoer
	webhookURL    string
	fetchTimeout  time.Duration
	submitTimeout time.Duration
	maxCSVBytes   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer replaces the underlying HTTP client.
func WithHTTPDoer(d httpretry.HTTPDoer) Option {
	return func(c *Client) { c.doer = d }
}

// WithMaxCSVBytes overrides DefaultMaxCSVBytes.
func WithMaxCSVBytes(n int64) Option {
	return func(c *Client) { c.maxCSVBytes = n }
}

// WithRetries retries idempotent reads. Only use it for clients that never
// post reminder marks or submissions, since those calls are not idempotent.
func WithRetries(n int, opts ...httpretry.Option) Option {
	return func(c *Client) { c.doer = httpretry.NewRetryClient(c.doer, n, opts...) }
}

// NewClient builds a client from sheet settings.
func NewClient(cfg config.SheetsConfig, opts ...Option) *Client {
	c := &Client{
		doer:          &http.Client{},
		fetchTimeout:  cfg.FetchTimeout(),
		submitTimeout: cfg.SubmitTimeout(),
		maxCSVBytes:   DefaultMaxCSVBytes,
	}
	if cfg.WebhookConfigured() {
		c.webhookURL = strings.TrimSpace(cfg.WebhookURL)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebhookConfigured reports whether reminder marks and submissions will be
// delivered.
func (c *Client) WebhookConfigured() bool { return c.webhookURL != "" }

// FetchCSV downloads a published CSV export. The request is bounded by the
// configured fetch timeout.
func (c *Client) FetchCSV(ctx context.Context, url string) (string, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build CSV request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.doer.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch CSV: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxCSVBytes+1))
	if err != nil {
		return "", fmt.Errorf("read CSV: %w", err)
	}
	if int64(len(body)) > c.maxCSVBytes {
		return "", fmt.Errorf("fetch CSV: %w (%d bytes)", ErrCSVTooLarge, c.maxCSVBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Op: "fetch CSV", StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return string(body), nil
}

type reminderUpdate struct {
	Action       string               `json:"action"`
	EnrollmentID string               `json:"enrollmentId"`
	ReminderType mailing.ReminderType `json:"reminderType"`
}

// MarkReminderSent sets the sheet's sent flag for (enrollmentID, tier).
// Without a webhook it does nothing, which leaves the row eligible again on
// the next run.
func (c *Client) MarkReminderSent(ctx context.Context, enrollmentID string, tier mailing.ReminderType) error {
	if c.webhookURL == "" {
		log.Debug("webhook not configured, reminder not marked", "enrollment_id", enrollmentID, "tier", string(tier))
		return nil
	}

	resp, body, err := c.postJSON(ctx, reminderUpdate{
		Action:       "updateReminder",
		EnrollmentID: enrollmentID,
		ReminderType: tier,
	})
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "mark reminder sent", StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, payload any) (*http.Response, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, body, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if r := []rune(s); len(r) > 200 {
		return string(r[:200])
	}
	return s
}
