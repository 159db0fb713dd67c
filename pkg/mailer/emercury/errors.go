package emercury

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates the sender configuration is unusable.
	ErrInvalidConfig = errors.New("emercury: invalid config")

	// ErrInvalidMessage indicates the message cannot be turned into a payload.
	ErrInvalidMessage = errors.New("emercury: invalid message")

	// ErrUnreachable indicates the HTTP exchange with the API did not complete.
	ErrUnreachable = errors.New("emercury: could not reach the remote Emercury server")

	// ErrRejected indicates the API answered with a non-200 status.
	// The concrete error is a *ProviderError.
	ErrRejected = errors.New("emercury: unable to send an email")

	// ErrMalformedResponse indicates a 200 response without data.messageId.
	ErrMalformedResponse = errors.New("emercury: malformed success response")
)

// ProviderError is returned when the API rejects a message.
type ProviderError struct {
	StatusCode int      // HTTP status
	Code       string   // status.code from the response body, empty if absent
	Details    []string // status.details from the response body
	Body       string   // Raw response body, truncated
}

// Error renders "unable to send an email[: details] (code N)."; the code reads
// "unknown" when the response did not carry one.
func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRejected.Error())
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, ", "))
	}

	code := e.Code
	if code == "" {
		code = "unknown"
	}
	fmt.Fprintf(&b, " (code %s).", code)
	return b.String()
}

// Unwrap makes errors.Is(err, ErrRejected) hold.
func (e *ProviderError) Unwrap() error {
	return ErrRejected
}
