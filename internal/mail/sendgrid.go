package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/freefinder/apiserver/config"
)

// SendGridClient delivers mail through the SendGrid API.
type SendGridClient struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridClient constructs a SendGrid backend from config.
func NewSendGridClient(cfg config.MailConfig) (*SendGridClient, error) {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.FromAddress) == "" {
		return nil, errors.New("mail from address is required")
	}
	return &SendGridClient{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   cfg.FromAddress,
	}, nil
}

// Send delivers a message through SendGrid.
func (s *SendGridClient) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail("", s.from)
	to := sgmail.NewEmail("", msg.To)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
