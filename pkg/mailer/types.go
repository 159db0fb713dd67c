package mailer

import "slices"

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	From    Address   // Sender; falls back to Config default in Mailer
	To      []Address // Primary recipients
	CC      []Address // Carbon copy recipients
	BCC     []Address // Blind carbon copy recipients
	ReplyTo []Address // Reply-to addresses, first one wins for single-address providers
	Subject string    // Email subject
	HTML    string    // HTML body content
	Text    string    // Plain text alternative
}

// Recipients returns To, CC and BCC in that order, with duplicate
// addresses removed (case-insensitive, first occurrence kept).
func (e *Email) Recipients() []Address {
	seen := make(map[string]struct{}, len(e.To)+len(e.CC)+len(e.BCC))
	result := make([]Address, 0, len(e.To)+len(e.CC)+len(e.BCC))
	for _, list := range [][]Address{e.To, e.CC, e.BCC} {
		for _, addr := range list {
			if addr.IsZero() {
				continue
			}
			k := addr.key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			result = append(result, addr)
		}
	}
	return result
}

// Validate checks that the email can be handed to a Sender.
func (e *Email) Validate() error {
	switch {
	case e.From.IsZero():
		return ErrNoSender
	case len(e.Recipients()) == 0:
		return ErrNoRecipient
	case e.Subject == "":
		return ErrNoSubject
	case e.HTML == "" && e.Text == "":
		return ErrNoContent
	}
	return nil
}

// Clone returns a deep copy of the email.
func (e *Email) Clone() *Email {
	c := *e
	c.To = slices.Clone(e.To)
	c.CC = slices.Clone(e.CC)
	c.BCC = slices.Clone(e.BCC)
	c.ReplyTo = slices.Clone(e.ReplyTo)
	return &c
}
