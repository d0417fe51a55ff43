package notification

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/ticketflow/ticketflow/internal/config"
)

// Mailer delivers a rendered email to one or more recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error
}

// SESMailer sends through AWS SES.
type SESMailer struct {
	client *ses.SES
	from   string
}

// NewSESMailer builds a mailer from config.
func NewSESMailer(cfg config.MailConfig) (*SESMailer, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.AccessKeyID != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""))
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return &SESMailer{client: ses.New(sess), from: cfg.FromAddress}, nil
}

// Send delivers the message; a non-nil error means SES rejected it.
func (m *SESMailer) Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: aws.StringSlice(to),
		},
		Message: &ses.Message{
			Subject: &ses.Content{Data: aws.String(subject)},
			Body: &ses.Body{
				Html: &ses.Content{Data: aws.String(htmlBody)},
				Text: &ses.Content{Data: aws.String(textBody)},
			},
		},
	}
	_, err := m.client.SendEmailWithContext(ctx, input)
	return err
}
