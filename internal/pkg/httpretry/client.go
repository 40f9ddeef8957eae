// Package httpretry retries idempotent HTTP requests with exponential
// backoff and full jitter. Callers must only wrap requests that are safe to
// repeat.
package httpretry

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient wraps an HTTPDoer with retry logic.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option adjusts a RetryClient.
type Option func(*RetryClient)

// WithBackoff sets the base and maximum delay between attempts.
func WithBackoff(base, max time.Duration) Option {
	return func(rc *RetryClient) {
		rc.baseDelay = base
		rc.maxDelay = max
	}
}

// NewRetryClient wraps client. A nil client gets a 30s-timeout http.Client
// and maxRetries <= 0 means 3 retries after the first attempt.
func NewRetryClient(client HTTPDoer, maxRetries int, opts ...Option) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	rc := &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Do executes req, retrying on 429, 5xx gateway-type statuses and transport
// errors. Context cancellation stops retries immediately. The last response
// is returned as-is so callers can inspect its status.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset request body: %w", err)
				}
				req.Body = body
			}

			delay := rc.delay(attempt)
			logger.Warn("retrying request",
				"attempt", attempt, "max", rc.maxRetries,
				"method", req.Method, "host", req.URL.Host, "wait", delay.String(),
				"cause", lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				return nil, lastErr
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}

		if !retryableStatus(resp.StatusCode) || attempt == rc.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// delay is random(0, min(maxDelay, baseDelay*2^(attempt-1))), floored at a
// tenth of the base delay.
func (rc *RetryClient) delay(attempt int) time.Duration {
	exp := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(rc.maxDelay) {
		exp = float64(rc.maxDelay)
	}
	d := time.Duration(rand.Float64() * exp)
	if floor := rc.baseDelay / 10; d < floor {
		d = floor
	}
	return d
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
