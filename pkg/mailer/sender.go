package mailer

import "context"

// Sender defines the minimal interface that email providers must implement.
// It accepts a resolved SentMessage and handles the actual delivery.
type Sender interface {
	// Send delivers the message with exactly one provider call.
	// On success the provider id is recorded with msg.SetMessageID.
	Send(ctx context.Context, msg *SentMessage) error
}
