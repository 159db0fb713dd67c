package mailer

import "errors"

var (
	// ErrNilEmail indicates a nil *Email was passed.
	ErrNilEmail = errors.New("email is nil")

	// ErrNoSender indicates the email has no sender address.
	ErrNoSender = errors.New("email must have a sender")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates neither an HTML nor a text body was provided.
	ErrNoContent = errors.New("email must have an HTML or text body")

	// ErrInvalidAddress indicates an address could not be parsed.
	ErrInvalidAddress = errors.New("invalid email address")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)
