// Package emercury implements mailer.Sender on top of the Emercury HTTP API.
//
// Each Send performs exactly one request:
//
//	POST https://{host}[:port]/api/mail/send
//	Accept: application/json
//	X-Emercury-Token: <api key>
//
// The JSON body carries the envelope sender as "from", the first envelope
// recipient as "to", the subject, the first Reply-To address as "replyTo"
// and one "contents" entry per non-empty body, HTML before plain text.
// Providers that need one call per recipient are served by
// mailer.Mailer.SendEach.
//
// # Usage
//
//	sender, err := emercury.New(emercury.Config{
//		APIKey: emercury.APIKey(os.Getenv("EMERCURY_API_KEY")),
//	}, emercury.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))
//	if err != nil {
//		return err
//	}
//
//	msg, err := mailer.NewSentMessage(&mailer.Email{
//		From:    mailer.NewAddress("team@example.com", "Team"),
//		To:      []mailer.Address{mailer.NewAddress("user@example.com", "")},
//		Subject: "Welcome",
//		HTML:    "<p>Hello!</p>",
//	})
//	if err != nil {
//		return err
//	}
//	if err := sender.Send(ctx, msg); err != nil {
//		return err
//	}
//	fmt.Println(msg.MessageID())
//
// # Errors
//
//   - ErrUnreachable: the request or the response body transfer failed
//   - ErrRejected: non-200 status, the error is a *ProviderError
//   - ErrMalformedResponse: 200 without data.messageId
//   - ErrInvalidMessage: no sender or recipient in the envelope
//   - ErrInvalidConfig: missing API key or bad port
//
// The API key never appears in errors, logs, or formatted output of Config.
package emercury
