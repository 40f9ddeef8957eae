package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademax/academy-enrollment/internal/config"
)

// fakeSMTP accepts one session and reports the DATA payload. Recipients at
// reject.example are refused.
func fakeSMTP(t *testing.T) (string, int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				tp.PrintfLine("250-localhost")
				tp.PrintfLine("250 8BITMIME")
			case strings.HasPrefix(cmd, "RCPT") && strings.Contains(cmd, "REJECT.EXAMPLE"):
				tp.PrintfLine("550 mailbox unavailable")
			case cmd == "DATA":
				tp.PrintfLine("354 end with .")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				got <- strings.Join(lines, "\r\n")
				tp.PrintfLine("250 queued")
			case cmd == "QUIT":
				tp.PrintfLine("221 bye")
				return
			default:
				tp.PrintfLine("250 OK")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, got
}

func TestSMTPSender_Send(t *testing.T) {
	host, port, got := fakeSMTP(t)
	s := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, TimeoutSeconds: 5})

	receipt, err := s.Send(context.Background(), Message{
		From:    "TradeMax Academy <admissions@trademax.example>",
		To:      "asha@example.com",
		Subject: "⏳ Reminder",
		HTML:    "<p>Hello</p>",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(receipt.MessageID, "@trademax.example>"))

	select {
	case data := <-got:
		assert.Contains(t, data, "To: asha@example.com")
		assert.Contains(t, data, "Message-ID: "+receipt.MessageID)
		assert.Contains(t, data, "=?utf-8?q?")
		assert.Contains(t, data, base64.StdEncoding.EncodeToString([]byte("<p>Hello</p>")))
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSMTPSender_RecipientRejected(t *testing.T) {
	host, port, _ := fakeSMTP(t)
	s := NewSMTPSender(config.SMTPConfig{Host: host, Port: port, TimeoutSeconds: 5})

	_, err := s.Send(context.Background(), Message{
		From: "admissions@trademax.example", To: "x@reject.example", Subject: "s", HTML: "h",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RCPT TO")
}

func TestSMTPSender_RejectsMissingAddresses(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 2525})

	_, err := s.Send(context.Background(), Message{To: "a@b.co"})
	assert.Error(t, err)
	_, err = s.Send(context.Background(), Message{From: "a@b.co"})
	assert.Error(t, err)
}

func TestBuildMIME_WrapsBody(t *testing.T) {
	raw := string(buildMIME(Message{From: "a@b.co", To: "c@d.co", Subject: "Hi", HTML: strings.Repeat("x", 200)},
		"<id@b.co>", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "Date: Fri, 02 Jan 2026 03:04:05 +0000")
	for _, line := range strings.Split(strings.TrimRight(body, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

type stubSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (s *stubSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func TestSESSender_Send(t *testing.T) {
	stub := &stubSES{}
	s := NewSESSenderWithClient(stub)

	receipt, err := s.Send(context.Background(), Message{From: "a@b.co", To: "c@d.co", Subject: "Hi", HTML: "<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, "ses-123", receipt.MessageID)
	assert.Equal(t, "a@b.co", aws.ToString(stub.in.FromEmailAddress))
	assert.Equal(t, []string{"c@d.co"}, stub.in.Destination.ToAddresses)
	assert.Equal(t, "<b>x</b>", aws.ToString(stub.in.Content.Simple.Body.Html.Data))
}

func TestSESSender_Error(t *testing.T) {
	s := NewSESSenderWithClient(&stubSES{err: errors.New("throttled")})

	_, err := s.Send(context.Background(), Message{From: "a@b.co", To: "c@d.co", Subject: "Hi", HTML: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), config.MailConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), config.MailConfig{Provider: "ses"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), config.MailConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)

	s, err := New(context.Background(), config.MailConfig{SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
	assert.Equal(t, "smtp.example.com:587", net.JoinHostPort("smtp.example.com", strconv.Itoa(s.(*SMTPSender).port)))
}
