// Package email renders and delivers the transactional emails sent for
// project briefs.
package email

import (
	"context"
	"fmt"
)

// Message is a single outbound email. From may be empty, in which case the
// sender's configured identity is used.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SendError wraps a provider failure with the recipient it was meant for.
type SendError struct {
	To  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email to %s: %v", e.To, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// FormatAddress renders "Name <address>", or the bare address when name is empty.
func FormatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
