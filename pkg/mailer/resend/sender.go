package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/emercury-dev/mailer/pkg/mailer"
)

// ErrInvalidConfig is returned by New when the API key is missing.
var ErrInvalidConfig = errors.New("resend: invalid configuration")

// Option configures a Sender.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(u *url.URL) Option {
	return func(o *options) { o.baseURL = u }
}

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
}

// New creates a new Resend sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	client := resend.NewClient(cfg.APIKey)
	if o.httpClient != nil {
		client = resend.NewCustomClient(o.httpClient, cfg.APIKey)
	}
	if o.baseURL != nil {
		client.BaseURL = o.baseURL
	}
	return &Sender{client: client}, nil
}

// String identifies the transport by the API host in use.
func (s *Sender) String() string {
	return "resend+api://" + s.client.BaseURL.Host
}

// Send implements mailer.Sender. Resend accepts every recipient in one call.
func (s *Sender) Send(ctx context.Context, msg *mailer.SentMessage) error {
	if msg == nil || msg.Email() == nil {
		return errors.New("resend: message is nil")
	}

	resp, err := s.client.Emails.SendWithContext(ctx, buildRequest(msg))
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	if resp != nil {
		msg.SetMessageID(resp.Id)
	}
	return nil
}

func buildRequest(msg *mailer.SentMessage) *resend.SendEmailRequest {
	email := msg.Email()
	req := &resend.SendEmailRequest{
		From:    msg.Envelope().Sender().String(),
		To:      addresses(email.To),
		Cc:      addresses(email.CC),
		Bcc:     addresses(email.BCC),
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}
	if len(email.To) == 0 {
		req.To = addresses(msg.Envelope().Recipients())
	}
	if len(email.ReplyTo) > 0 {
		req.ReplyTo = email.ReplyTo[0].String()
	}
	return req
}

func addresses(list []mailer.Address) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.String()
	}
	return out
}
