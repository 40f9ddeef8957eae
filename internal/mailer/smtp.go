package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trademax/academy-enrollment/internal/config"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

// SMTPSender submits mail to an SMTP relay. Port 465 uses implicit TLS; any
// other port upgrades with STARTTLS when the server offers it.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	now      func() time.Time
}

// NewSMTPSender creates a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	port := cfg.Port
	if port == 0 {
		port = 465
	}
	return &SMTPSender{
		host:     cfg.Host,
		port:     port,
		username: cfg.User,
		password: cfg.Pass,
		timeout:  cfg.Timeout(),
		now:      time.Now,
	}
}

// Send delivers msg and returns the generated Message-ID.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.validate(); err != nil {
		return Receipt{}, err
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return Receipt{}, fmt.Errorf("invalid sender address: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return Receipt{}, fmt.Errorf("invalid recipient address: %w", err)
	}

	domain := from.Address[strings.LastIndex(from.Address, "@")+1:]
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
	raw := buildMIME(msg, messageID, s.now())

	if err := s.deliver(ctx, from.Address, to.Address, raw); err != nil {
		logger.Warn("smtp send failed", "to", msg.To, "error", err)
		return Receipt{}, err
	}
	logger.Info("smtp message accepted", "to", msg.To, "message_id", messageID)
	return Receipt{MessageID: messageID}, nil
}

func (s *SMTPSender) deliver(ctx context.Context, from, to string, raw []byte) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	dialer := &net.Dialer{Timeout: s.timeout}

	var (
		conn net.Conn
		err  error
	)
	if s.port == 465 {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else if s.timeout > 0 {
		conn.SetDeadline(time.Now().Add(s.timeout))
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer c.Close()

	if s.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("STARTTLS: %w", err)
			}
		}
	}
	if s.username != "" && s.password != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
				return fmt.Errorf("AUTH: %w", err)
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("DATA close: %w", err)
	}
	return c.Quit()
}

// buildMIME renders a single-part HTML message with CRLF line endings.
func buildMIME(msg Message, messageID string, at time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", msg.From)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", at.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "base64")
	b.WriteString("\r\n")

	enc := base64.StdEncoding.EncodeToString([]byte(msg.HTML))
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	if enc != "" {
		b.WriteString(enc)
		b.WriteString("\r\n")
	}
	return b.Bytes()
}
