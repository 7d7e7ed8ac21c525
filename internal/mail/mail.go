package mail

import "context"

// Message is a provider-agnostic email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Backend defines the provider operations used by the app.
type Backend interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer wraps a backend with a stable API. Sends are synchronous and a
// failure surfaces immediately to the caller; there is no retry.
type Mailer struct {
	backend Backend
}

// New constructs a Mailer for the provided backend.
func New(backend Backend) *Mailer {
	return &Mailer{backend: backend}
}

// Send delivers a message via the configured backend.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	return m.backend.Send(ctx, msg)
}
