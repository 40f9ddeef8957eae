package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// InvalidResponseError means the webhook answered 2xx with a body that is
// not JSON.
type InvalidResponseError struct {
	Snippet string
}

func (e *InvalidResponseError) Error() string {
	return "Invalid response from Google Apps Script"
}

// RejectedError means the webhook answered {"success": false}.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// SubmitResult is the webhook's reply to an enrollment row append.
type SubmitResult struct {
	Message     string
	RowNumber   *int
	TokenNumber *float64
}

type submitReply struct {
	Success     *bool    `json:"success"`
	Message     string   `json:"message"`
	Error       string   `json:"error"`
	RowNumber   *float64 `json:"rowNumber"`
	TokenNumber *float64 `json:"tokenNumber"`
}

// Submit appends an enrollment row. payload is forwarded as JSON unchanged.
func (c *Client) Submit(ctx context.Context, payload any) (SubmitResult, error) {
	if c.webhookURL == "" {
		return SubmitResult{}, ErrWebhookNotConfigured
	}
	if c.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.submitTimeout)
		defer cancel()
	}

	resp, body, err := c.postJSON(ctx, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return SubmitResult{}, ErrSubmitTimeout
		}
		return SubmitResult{}, fmt.Errorf("submit enrollment: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SubmitResult{}, &StatusError{Op: "submit enrollment", StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	var reply submitReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return SubmitResult{}, &InvalidResponseError{Snippet: snippet(body)}
	}
	if reply.Success != nil && !*reply.Success {
		msg := reply.Message
		if msg == "" {
			msg = reply.Error
		}
		if msg == "" {
			msg = "Google Apps Script reported a failure"
		}
		return SubmitResult{}, &RejectedError{Message: msg}
	}

	res := SubmitResult{Message: reply.Message}
	if reply.RowNumber != nil {
		n := int(*reply.RowNumber)
		res.RowNumber = &n
	}
	switch {
	case reply.TokenNumber != nil:
		res.TokenNumber = reply.TokenNumber
	case res.RowNumber != nil:
		n := float64(max(*res.RowNumber-1, 1))
		res.TokenNumber = &n
	}
	return res, nil
}
