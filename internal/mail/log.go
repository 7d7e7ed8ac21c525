package mail

import (
	"context"
	"log"
)

// LogClient writes mail to the process log instead of sending it. Used
// in development so signup can be exercised without a SendGrid account.
type LogClient struct{}

// NewLogClient constructs a logging backend.
func NewLogClient() *LogClient {
	return &LogClient{}
}

// Send logs the message.
func (l *LogClient) Send(_ context.Context, msg Message) error {
	log.Printf("mail to=%s subject=%q body=%q", msg.To, msg.Subject, msg.Text)
	return nil
}
