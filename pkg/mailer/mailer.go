package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	texttemplate "text/template"

	"golang.org/x/sync/errgroup"
)

// Mailer provides high-level email sending with template rendering.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
	from     Address
	replyTo  []Address
}

// New creates a new Mailer with the given sender and renderer.
// The renderer may be nil when only SendRaw and SendEach are used.
func New(sender Sender, renderer *Renderer, cfg Config) (*Mailer, error) {
	m := &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
	}

	if cfg.FromEmail != "" {
		from, err := ParseAddress(cfg.FromEmail)
		if err != nil {
			return nil, fmt.Errorf("mailer: from: %w", err)
		}
		if cfg.FromName != "" {
			from = NewAddress(from.Email, cfg.FromName)
		}
		m.from = from
	}

	replyTo, err := ParseAddressList(cfg.ReplyTo)
	if err != nil {
		return nil, fmt.Errorf("mailer: reply-to: %w", err)
	}
	m.replyTo = replyTo

	if m.config.FanOutWorkers <= 0 {
		m.config.FanOutWorkers = 1
	}
	return m, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	m, err := New(sender, renderer, cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	To       Address // Single recipient (most common case)
	Template string  // Template filename (e.g., "welcome.md")
	Data     any     // Template data

	// Optional overrides
	Subject string    // Override template subject
	Layout  string    // Override default layout
	From    Address   // Override default sender
	ReplyTo []Address // Override default reply-to
	CC      []Address // Carbon copy
	BCC     []Address // Blind carbon copy
}

// Send renders a template and sends an email.
// Subject resolution: params.Subject > template metadata > config fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) (*SentMessage, error) {
	if params.To.IsZero() {
		return nil, ErrNoRecipient
	}
	if m.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrRenderFailed)
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		if fromMeta, ok := result.Subject(); ok {
			subject = fromMeta
		} else {
			subject = m.config.FallbackSubject
		}
	}

	subject, err = processSubject(subject, params.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	return m.SendRaw(ctx, &Email{
		From:    params.From,
		To:      []Address{params.To},
		CC:      params.CC,
		BCC:     params.BCC,
		ReplyTo: params.ReplyTo,
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
	})
}

// SendRaw sends a pre-built email without template rendering.
// The email is not modified; defaults are applied to a copy.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) (*SentMessage, error) {
	if email == nil {
		return nil, ErrNilEmail
	}
	prepared := m.prepare(email)
	if err := prepared.Validate(); err != nil {
		return nil, err
	}
	return m.deliver(ctx, prepared)
}

// SendEach sends a separate copy of the email to every recipient in To, CC
// and BCC, for providers that accept a single recipient per call.
// Copies are sent concurrently, bounded by Config.FanOutWorkers. The returned
// slice follows recipient order; entries for failed recipients are nil and
// their errors are joined.
func (m *Mailer) SendEach(ctx context.Context, email *Email) ([]*SentMessage, error) {
	if email == nil {
		return nil, ErrNilEmail
	}
	prepared := m.prepare(email)
	if err := prepared.Validate(); err != nil {
		return nil, err
	}

	recipients := prepared.Recipients()
	results := make([]*SentMessage, len(recipients))
	errs := make([]error, len(recipients))

	var g errgroup.Group
	g.SetLimit(m.config.FanOutWorkers)
	for i, rcpt := range recipients {
		single := prepared.Clone()
		single.To = []Address{rcpt}
		single.CC = nil
		single.BCC = nil

		g.Go(func() error {
			msg, err := m.deliver(ctx, single)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", rcpt.Email, err)
				return nil
			}
			results[i] = msg
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

func (m *Mailer) prepare(email *Email) *Email {
	prepared := email.Clone()
	if prepared.From.IsZero() {
		prepared.From = m.from
	}
	if len(prepared.ReplyTo) == 0 && len(m.replyTo) > 0 {
		prepared.ReplyTo = append([]Address(nil), m.replyTo...)
	}
	return prepared
}

func (m *Mailer) deliver(ctx context.Context, email *Email) (*SentMessage, error) {
	msg, err := NewSentMessage(email)
	if err != nil {
		return nil, err
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return nil, errors.Join(ErrSendFailed, err)
	}
	return msg, nil
}

func processSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
