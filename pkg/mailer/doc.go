// Package mailer provides a provider-agnostic email sending layer with
// markdown template rendering.
//
// # Architecture
//
//   - Sender: interface implemented by providers (see the emercury and resend subpackages)
//   - Renderer: turns markdown templates with YAML front matter into HTML and text bodies
//   - Mailer: combines a Sender and a Renderer and applies configured defaults
//
// A Sender receives a *SentMessage: the Email, the Envelope it is delivered
// with, and a slot for the id the provider assigns.
//
// # Usage
//
//	sender, err := emercury.New(emercury.Config{APIKey: emercury.APIKey(key)})
//	if err != nil {
//		return err
//	}
//
//	m, err := mailer.New(sender, mailer.NewRenderer(emails.FS), mailer.Config{
//		FromEmail:       "team@example.com",
//		FromName:        "Team",
//		FallbackSubject: "Notification",
//		DefaultLayout:   "base.html",
//	})
//	if err != nil {
//		return err
//	}
//
//	msg, err := m.Send(ctx, mailer.SendParams{
//		To:       mailer.NewAddress("user@example.com", "John"),
//		Template: "welcome.md",
//		Data:     map[string]any{"Name": "John"},
//	})
//
// # Templates
//
// Templates are markdown files with optional YAML front matter:
//
//	---
//	Subject: Welcome {{.Name}}!
//	---
//
//	# Welcome
//
//	Hello {{.Name}}, see https://example.com/start to get going.
//
// The body is executed with text/template; the result is the plain-text
// body. It is then converted with goldmark (GitHub Flavored Markdown, bare
// URLs linked) and wrapped in an html/template layout that receives
// .Content and .Metadata. Raw HTML in templates is dropped unless
// RendererConfig.AllowRawHTML is set, in which case the output is sanitized
// with bluemonday.
//
// Subject resolution is SendParams.Subject, then the Subject front matter
// key, then Config.FallbackSubject. The chosen subject is itself executed
// as a template with the same data.
//
// # Sending
//
//   - Send renders a template and sends it to one recipient
//   - SendRaw sends a prepared Email as a single provider call
//   - SendEach sends one copy per recipient (To, CC and BCC, deduplicated)
//     concurrently, for providers that deliver to a single address per call
//
// The Email passed in is never modified; defaults are applied to a copy.
//
// # Errors
//
// Validation returns ErrNoSender, ErrNoRecipient, ErrNoSubject or
// ErrNoContent. Rendering failures wrap ErrRenderFailed, ErrTemplateNotFound,
// ErrLayoutNotFound or ErrInvalidFrontmatter. Provider failures are joined
// with ErrSendFailed, so both errors.Is(err, mailer.ErrSendFailed) and
// errors.Is(err, emercury.ErrRejected) hold.
package mailer
