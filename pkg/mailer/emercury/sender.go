package emercury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/emercury-dev/mailer/pkg/logger"
	"github.com/emercury-dev/mailer/pkg/mailer"
)

const (
	sendPath    = "/api/mail/send"
	tokenHeader = "X-Emercury-Token"

	// maxResponseBody caps how much of a response is read.
	maxResponseBody = 1 << 20
)

// Doer performs HTTP requests. *http.Client satisfies it; timeouts, proxies
// and TLS settings belong to the implementation passed in.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient sets the HTTP client used for API calls.
// Defaults to http.DefaultClient.
func WithHTTPClient(c Doer) Option {
	return func(s *Sender) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// Sender implements mailer.Sender using the Emercury HTTP API.
// It holds only immutable configuration and is safe for concurrent use
// when its HTTP client is.
type Sender struct {
	client Doer
	logger *slog.Logger
	key    APIKey
	host   string
	port   int
}

// New creates a new Emercury sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if strings.TrimSpace(string(cfg.APIKey)) == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}

	s := &Sender{
		client: http.DefaultClient,
		logger: logger.NewNope(),
		key:    cfg.APIKey,
		host:   strings.TrimSpace(cfg.Host),
		port:   cfg.Port,
	}
	if s.host == "" {
		s.host = DefaultHost
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(cfg Config, opts ...Option) *Sender {
	s, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Endpoint returns host[:port].
func (s *Sender) Endpoint() string {
	if s.port == 0 {
		return s.host
	}
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// String identifies the transport, e.g. "emercury+api://api.smtp.emercury.net".
func (s *Sender) String() string {
	return "emercury+api://" + s.Endpoint()
}

// Send implements mailer.Sender. It performs exactly one POST and never retries.
func (s *Sender) Send(ctx context.Context, msg *mailer.SentMessage) error {
	if msg == nil || msg.Email() == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	p, err := buildPayload(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrInvalidMessage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+s.Endpoint()+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrInvalidConfig, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, string(s.key))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnreachable, err)
	}

	parsed := parseResponse(raw)

	if resp.StatusCode != http.StatusOK {
		perr := parsed.providerError(resp.StatusCode, raw)
		s.logger.WarnContext(ctx, "emercury: email rejected",
			slog.String("endpoint", s.Endpoint()),
			slog.Int("status", resp.StatusCode),
			slog.String("code", perr.Code),
		)
		return perr
	}

	id := parsed.messageID()
	if id == "" {
		return fmt.Errorf("%w: data.messageId is missing", ErrMalformedResponse)
	}
	msg.SetMessageID(id)

	s.logger.DebugContext(ctx, "emercury: email sent",
		slog.String("endpoint", s.Endpoint()),
		slog.String("message_id", id),
	)
	return nil
}
