package emercury

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/emercury-dev/mailer/pkg/mailer"
)

const (
	contentTypeHTML = "text/html"
	contentTypeText = "text/plain"

	// maxErrorBody bounds the raw body kept on a ProviderError.
	maxErrorBody = 1024
)

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// payload is the request body of POST /api/mail/send.
type payload struct {
	From     address   `json:"from"`
	To       address   `json:"to"`
	Subject  string    `json:"subject"`
	ReplyTo  *address  `json:"replyTo,omitempty"`
	Contents []content `json:"contents,omitempty"`
}

func formatAddress(a mailer.Address) address {
	return address{Email: a.Encoded(), Name: a.Name}
}

// buildPayload maps a message onto the wire format. Only the first envelope
// recipient and the first reply-to address are transmitted.
func buildPayload(msg *mailer.SentMessage) (*payload, error) {
	env := msg.Envelope()
	to, ok := env.FirstRecipient()
	if !ok {
		return nil, mailer.ErrNoRecipient
	}
	if env.Sender().IsZero() {
		return nil, mailer.ErrNoSender
	}

	email := msg.Email()
	p := &payload{
		From:    formatAddress(env.Sender()),
		To:      formatAddress(to),
		Subject: email.Subject,
	}

	if len(email.ReplyTo) > 0 {
		replyTo := formatAddress(email.ReplyTo[0])
		p.ReplyTo = &replyTo
	}

	if email.HTML != "" {
		p.Contents = append(p.Contents, content{ContentType: contentTypeHTML, Content: email.HTML})
	}
	if email.Text != "" {
		p.Contents = append(p.Contents, content{ContentType: contentTypeText, Content: email.Text})
	}

	return p, nil
}

// response covers both the success and the error body shapes.
type response struct {
	Data *struct {
		MessageID any `json:"messageId"`
	} `json:"data"`
	Status *struct {
		Code    json.RawMessage `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"status"`
}

// parseResponse decodes a body without ever failing. Members of an unexpected
// type are skipped by encoding/json, and a syntax error leaves every field unset.
func parseResponse(body []byte) response {
	var r response
	_ = json.Unmarshal(body, &r)
	return r
}

func (r response) messageID() string {
	if r.Data == nil {
		return ""
	}
	switch id := r.Data.MessageID.(type) {
	case string:
		return id
	case float64:
		b, _ := json.Marshal(id)
		return string(b)
	}
	return ""
}

func (r response) providerError(statusCode int, body []byte) *ProviderError {
	perr := &ProviderError{
		StatusCode: statusCode,
		Body:       truncate(string(body), maxErrorBody),
	}
	if r.Status == nil {
		return perr
	}

	perr.Code = rawScalar(r.Status.Code)
	perr.Details = details(r.Status.Details)
	return perr
}

// details accepts a list of strings, a list of mixed scalars, or a single
// scalar.
func details(raw json.RawMessage) []string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		if s := rawScalar(raw); s != "" {
			return []string{s}
		}
		return nil
	}

	result := make([]string, 0, len(list))
	for _, item := range list {
		if s := rawScalar(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// rawScalar renders a JSON scalar as text: strings unquoted, numbers and
// booleans verbatim, null or missing as "".
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
