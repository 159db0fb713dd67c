package mailer

import "slices"

// Envelope holds the SMTP-level sender and the resolved recipient list.
// It is built once per send and never modified afterwards.
type Envelope struct {
	sender     Address
	recipients []Address
}

// NewEnvelope creates an envelope from an explicit sender and recipient list.
func NewEnvelope(sender Address, recipients []Address) (Envelope, error) {
	if sender.IsZero() {
		return Envelope{}, ErrNoSender
	}
	if len(recipients) == 0 {
		return Envelope{}, ErrNoRecipient
	}
	return Envelope{sender: sender, recipients: slices.Clone(recipients)}, nil
}

// EnvelopeFor resolves the envelope of an email: the sender is From and the
// recipients are To, CC and BCC with duplicates removed.
func EnvelopeFor(email *Email) (Envelope, error) {
	if email == nil {
		return Envelope{}, ErrNilEmail
	}
	return NewEnvelope(email.From, email.Recipients())
}

// Sender returns the envelope sender.
func (e Envelope) Sender() Address {
	return e.sender
}

// Recipients returns a copy of the resolved recipient list.
func (e Envelope) Recipients() []Address {
	return slices.Clone(e.recipients)
}

// FirstRecipient returns the first resolved recipient.
func (e Envelope) FirstRecipient() (Address, bool) {
	if len(e.recipients) == 0 {
		return Address{}, false
	}
	return e.recipients[0], true
}
