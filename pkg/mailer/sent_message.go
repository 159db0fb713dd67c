package mailer

// SentMessage is the record of one send attempt: the email as handed to the
// Sender, the envelope it was sent with, and the id the provider assigned.
type SentMessage struct {
	email     *Email
	envelope  Envelope
	messageID string
}

// NewSentMessage builds a SentMessage for the given email.
// When no envelope is supplied it is resolved with EnvelopeFor.
func NewSentMessage(email *Email, envelope ...Envelope) (*SentMessage, error) {
	if email == nil {
		return nil, ErrNilEmail
	}
	if len(envelope) > 0 {
		return &SentMessage{email: email, envelope: envelope[0]}, nil
	}

	env, err := EnvelopeFor(email)
	if err != nil {
		return nil, err
	}
	return &SentMessage{email: email, envelope: env}, nil
}

// Email returns the original message.
func (m *SentMessage) Email() *Email {
	return m.email
}

// Envelope returns the envelope used for delivery.
func (m *SentMessage) Envelope() Envelope {
	return m.envelope
}

// MessageID returns the provider-assigned id, empty until the Sender sets it.
func (m *SentMessage) MessageID() string {
	return m.messageID
}

// SetMessageID records the provider-assigned id.
func (m *SentMessage) SetMessageID(id string) {
	m.messageID = id
}
