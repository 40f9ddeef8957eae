// Package mailer delivers rendered emails over SMTP or AWS SES.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trademax/academy-enrollment/internal/config"
)

// ErrNotConfigured is returned when no transport credentials are present.
var ErrNotConfigured = errors.New("mail transport is not configured")

// Message is one outbound HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Receipt identifies an accepted message.
type Receipt struct {
	MessageID string `json:"messageId"`
}

// Sender delivers a message. Implementations return an error for any
// transport failure; callers decide whether it is fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

func (m Message) validate() error {
	if strings.TrimSpace(m.From) == "" {
		return errors.New("missing sender address")
	}
	if strings.TrimSpace(m.To) == "" {
		return errors.New("missing recipient address")
	}
	return nil
}

// New picks the transport named by cfg.Provider. It returns ErrNotConfigured
// when the chosen provider lacks credentials.
func New(ctx context.Context, cfg config.MailConfig) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "smtp":
		if cfg.SMTP.Host == "" {
			return nil, ErrNotConfigured
		}
		return NewSMTPSender(cfg.SMTP), nil
	case "ses":
		if cfg.SES.AccessKey == "" || cfg.SES.SecretKey == "" {
			return nil, ErrNotConfigured
		}
		return NewSESSender(ctx, cfg.SES)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
