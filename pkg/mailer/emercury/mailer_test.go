package emercury_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/emercury-dev/mailer/pkg/mailer"
	"github.com/emercury-dev/mailer/pkg/mailer/emercury"
	"github.com/emercury-dev/mailer/pkg/mailer/emercury/emercurytest"
)

func newMailer(t *testing.T, srv *emercurytest.Server) *mailer.Mailer {
	t.Helper()

	renderer := mailer.NewRenderer(fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(`<html>{{.Content}}</html>`)},
		"welcome.md":        &fstest.MapFile{Data: []byte("---\nSubject: Welcome {{.Name}}\n---\nHi **{{.Name}}**\n")},
	})

	m, err := mailer.New(newSender(t, srv), renderer, mailer.Config{
		FromEmail:       "team@example.com",
		FromName:        "Team",
		ReplyTo:         "help@example.com",
		FallbackSubject: "Notification",
		DefaultLayout:   "base.html",
		FanOutWorkers:   3,
	})
	require.NoError(t, err)
	return m
}

func TestMailer_Send_ThroughEmercury(t *testing.T) {
	t.Parallel()

	srv := emercurytest.NewServer(t, testKey)
	m := newMailer(t, srv)

	msg, err := m.Send(context.Background(), mailer.SendParams{
		To:       mailer.NewAddress("alice@example.com", "Alice"),
		Template: "welcome.md",
		Data:     map[string]string{"Name": "Alice"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, msg.MessageID())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	p := reqs[0].Payload
	require.Equal(t, emercurytest.Address{Email: "team@example.com", Name: "Team"}, p.From)
	require.Equal(t, emercurytest.Address{Email: "alice@example.com", Name: "Alice"}, p.To)
	require.Equal(t, "Welcome Alice", p.Subject)
	require.Equal(t, &emercurytest.Address{Email: "help@example.com"}, p.ReplyTo)
	require.Len(t, p.Contents, 2)
	require.Equal(t, "text/html", p.Contents[0].ContentType)
	require.Contains(t, p.Contents[0].Content, "<strong>Alice</strong>")
	require.Equal(t, "text/plain", p.Contents[1].ContentType)
	require.Equal(t, "Hi **Alice**\n", p.Contents[1].Content)
}

func TestMailer_SendEach_ThroughEmercury(t *testing.T) {
	t.Parallel()

	srv := emercurytest.NewServer(t, testKey)
	m := newMailer(t, srv)

	msgs, err := m.SendEach(context.Background(), &mailer.Email{
		To:      []mailer.Address{mailer.NewAddress("a@example.com", ""), mailer.NewAddress("b@example.com", "")},
		CC:      []mailer.Address{mailer.NewAddress("c@example.com", "")},
		Subject: "Digest",
		Text:    "news",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	ids := map[string]bool{}
	for _, msg := range msgs {
		require.NotEmpty(t, msg.MessageID())
		ids[msg.MessageID()] = true
	}
	require.Len(t, ids, 3)

	got := map[string]bool{}
	for _, r := range srv.Requests() {
		got[r.Payload.To.Email] = true
	}
	require.Equal(t, map[string]bool{"a@example.com": true, "b@example.com": true, "c@example.com": true}, got)
}

func TestMailer_SendRaw_RejectionKeepsProviderError(t *testing.T) {
	t.Parallel()

	srv := emercurytest.NewServer(t, testKey)
	srv.Reply(http.StatusUnprocessableEntity, `{"status":{"code":21,"details":["unknown sender domain"]}}`)
	m := newMailer(t, srv)

	_, err := m.SendRaw(context.Background(), &mailer.Email{
		To:      []mailer.Address{mailer.NewAddress("a@example.com", "")},
		Subject: "S",
		Text:    "x",
	})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.ErrorIs(t, err, emercury.ErrRejected)

	var perr *emercury.ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusUnprocessableEntity, perr.StatusCode)
	require.Equal(t, "21", perr.Code)
	require.Equal(t, []string{"unknown sender domain"}, perr.Details)
}
