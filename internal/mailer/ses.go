package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/trademax/academy-enrollment/internal/config"
	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

// SESAPI is the slice of the SES v2 client the sender needs.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers mail through AWS SES v2.
type SESSender struct {
	client SESAPI
}

// NewSESSender builds an SES client from static credentials.
func NewSESSender(ctx context.Context, cfg config.SESConfig) (*SESSender, error) {
	region := cfg.Region
	if region == "" {
		region = "ap-south-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESSenderWithClient wraps an existing client.
func NewSESSenderWithClient(client SESAPI) *SESSender {
	return &SESSender{client: client}
}

// Send submits msg and returns the SES message id.
func (s *SESSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.validate(); err != nil {
		return Receipt{}, err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Warn("ses send failed", "to", msg.To, "error", err)
		return Receipt{}, fmt.Errorf("ses send: %w", err)
	}

	id := aws.ToString(out.MessageId)
	logger.Info("ses message accepted", "to", msg.To, "message_id", id)
	return Receipt{MessageID: id}, nil
}
