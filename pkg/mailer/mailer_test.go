package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *SentMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// recordingSender keeps every message it is given and assigns sequential ids.
type recordingSender struct {
	mu   sync.Mutex
	sent []*SentMessage
	fail map[string]error
}

func (s *recordingSender) Send(_ context.Context, msg *SentMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rcpt, _ := msg.Envelope().FirstRecipient()
	if err := s.fail[rcpt.Email]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	msg.SetMessageID("id-" + rcpt.Email)
	return nil
}

func testConfig() Config {
	return Config{
		FromEmail:       "noreply@example.com",
		FromName:        "Example",
		FallbackSubject: "Notification",
		DefaultLayout:   "base.html",
		FanOutWorkers:   2,
	}
}

func newTestMailer(t *testing.T, sender Sender, files map[string]string, cfg Config) *Mailer {
	t.Helper()
	var r *Renderer
	if files != nil {
		r = NewRenderer(templatesFS(files))
	}
	m, err := New(sender, r, cfg)
	require.NoError(t, err)
	return m
}

func TestNew_InvalidReplyTo(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ReplyTo = "not an address"

	_, err := New(&recordingSender{}, nil, cfg)
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.Panics(t, func() { MustNew(&recordingSender{}, nil, cfg) })
}

func TestNew_From(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		display string
		want    Address
		wantErr error
	}{
		{name: "plain", email: "team@example.com", display: "Team", want: NewAddress("team@example.com", "Team")},
		{name: "name in address", email: "Ops <ops@example.com>", want: NewAddress("ops@example.com", "Ops")},
		{name: "name overrides", email: "Ops <ops@example.com>", display: "Team", want: NewAddress("ops@example.com", "Team")},
		{name: "unset", email: "", display: "Team", want: Address{}},
		{name: "invalid", email: "not an address", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.FromEmail = tt.email
			cfg.FromName = tt.display

			m, err := New(&recordingSender{}, nil, cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.from)
		})
	}
}

func TestMailer_NilEmail(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, err := New(sender, nil, testConfig())
	require.NoError(t, err)

	_, err = m.SendRaw(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilEmail)

	_, err = m.SendEach(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilEmail)
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *SentMessage) bool {
		e := msg.Email()
		return e.Subject == "Welcome Alice" &&
			e.From == NewAddress("noreply@example.com", "Example") &&
			len(e.To) == 1 && e.To[0].Email == "alice@example.com" &&
			e.Text == "Hi **Alice**\n"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*SentMessage).SetMessageID("msg-1")
	}).Return(nil).Once()

	m := newTestMailer(t, sender, map[string]string{
		"welcome.md": "---\nSubject: Welcome {{.Name}}\n---\nHi **{{.Name}}**\n",
	}, testConfig())

	msg, err := m.Send(context.Background(), SendParams{
		To:       NewAddress("alice@example.com", "Alice"),
		Template: "welcome.md",
		Data:     map[string]string{"Name": "Alice"},
	})
	require.NoError(t, err)
	require.Equal(t, "msg-1", msg.MessageID())
	require.Contains(t, msg.Email().HTML, "<strong>Alice</strong>")
	sender.AssertExpectations(t)
}

func TestMailer_Send_SubjectResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		override string
		want     string
	}{
		{name: "override wins", template: "---\nSubject: From meta\n---\nBody", override: "Override", want: "Override"},
		{name: "front matter", template: "---\nSubject: From meta\n---\nBody", want: "From meta"},
		{name: "fallback", template: "Body", want: "Notification"},
		{name: "override is templated", template: "Body", override: "Hi {{.Name}}", want: "Hi Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			m := newTestMailer(t, sender, map[string]string{"t.md": tt.template}, testConfig())

			_, err := m.Send(context.Background(), SendParams{
				To:       NewAddress("bob@example.com", ""),
				Template: "t.md",
				Data:     map[string]string{"Name": "Bob"},
				Subject:  tt.override,
			})
			require.NoError(t, err)
			require.Len(t, sender.sent, 1)
			require.Equal(t, tt.want, sender.sent[0].Email().Subject)
		})
	}
}

func TestMailer_Send_Overrides(t *testing.T) {
	t.Parallel()

	fsys := templatesFS(map[string]string{"t.md": "---\nSubject: S\n---\nBody"})
	fsys["layouts/alt.html"] = &fstest.MapFile{Data: []byte(`<main>{{.Content}}</main>`)}

	cfg := testConfig()
	cfg.ReplyTo = "Support <support@example.com>"

	sender := &recordingSender{}
	m, err := New(sender, NewRenderer(fsys), cfg)
	require.NoError(t, err)

	_, err = m.Send(context.Background(), SendParams{
		To:       NewAddress("to@example.com", ""),
		Template: "t.md",
		Layout:   "alt.html",
		From:     NewAddress("billing@example.com", "Billing"),
		CC:       []Address{NewAddress("cc@example.com", "")},
		BCC:      []Address{NewAddress("bcc@example.com", "")},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	e := sender.sent[0].Email()
	assert.Equal(t, NewAddress("billing@example.com", "Billing"), e.From)
	assert.Equal(t, []Address{NewAddress("support@example.com", "Support")}, e.ReplyTo)
	assert.Equal(t, []Address{NewAddress("cc@example.com", "")}, e.CC)
	assert.Equal(t, []Address{NewAddress("bcc@example.com", "")}, e.BCC)
	assert.Contains(t, e.HTML, "<main>")
	assert.Len(t, sender.sent[0].Envelope().Recipients(), 3)
}

func TestMailer_Send_Errors(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"ok.md":         "Body",
		"badsubject.md": "---\nSubject: Hi {{.Name\n---\nBody",
	}

	tests := []struct {
		name   string
		params SendParams
		want   error
	}{
		{name: "no recipient", params: SendParams{Template: "ok.md"}, want: ErrNoRecipient},
		{name: "missing template", params: SendParams{To: NewAddress("a@example.com", ""), Template: "nope.md"}, want: ErrTemplateNotFound},
		{name: "bad subject template", params: SendParams{To: NewAddress("a@example.com", ""), Template: "badsubject.md"}, want: ErrRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			m := newTestMailer(t, sender, files, testConfig())

			_, err := m.Send(context.Background(), tt.params)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, sender.sent)
		})
	}
}

func TestMailer_Send_NoRenderer(t *testing.T) {
	t.Parallel()

	m := newTestMailer(t, &recordingSender{}, nil, testConfig())
	_, err := m.Send(context.Background(), SendParams{To: NewAddress("a@example.com", ""), Template: "x.md"})
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestMailer_SendRaw(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := newTestMailer(t, sender, nil, testConfig())

	email := &Email{
		To:      []Address{NewAddress("a@example.com", "")},
		Subject: "Raw",
		Text:    "hello",
	}
	msg, err := m.SendRaw(context.Background(), email)
	require.NoError(t, err)
	require.Equal(t, "id-a@example.com", msg.MessageID())
	require.Equal(t, NewAddress("noreply@example.com", "Example"), msg.Envelope().Sender())
	require.True(t, email.From.IsZero(), "caller's email must not be modified")
}

func TestMailer_SendRaw_Validation(t *testing.T) {
	t.Parallel()

	valid := func() *Email {
		return &Email{
			To:      []Address{NewAddress("a@example.com", "")},
			Subject: "S",
			HTML:    "<p>x</p>",
		}
	}

	tests := []struct {
		name   string
		modify func(*Email)
		cfg    func(*Config)
		want   error
	}{
		{name: "no recipient", modify: func(e *Email) { e.To = nil }, want: ErrNoRecipient},
		{name: "no subject", modify: func(e *Email) { e.Subject = "" }, want: ErrNoSubject},
		{name: "no content", modify: func(e *Email) { e.HTML = "" }, want: ErrNoContent},
		{name: "no sender", cfg: func(c *Config) { c.FromEmail = "" }, want: ErrNoSender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			sender := &recordingSender{}
			m := newTestMailer(t, sender, nil, cfg)

			email := valid()
			if tt.modify != nil {
				tt.modify(email)
			}
			_, err := m.SendRaw(context.Background(), email)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, sender.sent)
		})
	}
}

func TestMailer_SendRaw_SenderFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider down")
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(boom).Once()

	m := newTestMailer(t, sender, nil, testConfig())
	msg, err := m.SendRaw(context.Background(), &Email{
		To:      []Address{NewAddress("a@example.com", "")},
		Subject: "S",
		Text:    "x",
	})
	require.Nil(t, msg)
	require.ErrorIs(t, err, ErrSendFailed)
	require.ErrorIs(t, err, boom)
	sender.AssertExpectations(t)
}

func TestMailer_SendEach(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := newTestMailer(t, sender, nil, testConfig())

	email := &Email{
		To:      []Address{NewAddress("a@example.com", ""), NewAddress("b@example.com", "")},
		CC:      []Address{NewAddress("c@example.com", ""), NewAddress("A@example.com", "")},
		BCC:     []Address{NewAddress("d@example.com", "")},
		Subject: "Fan out",
		Text:    "x",
	}

	msgs, err := m.SendEach(context.Background(), email)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	for i, want := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"} {
		require.Equal(t, "id-"+want, msgs[i].MessageID())
		e := msgs[i].Email()
		require.Equal(t, []Address{NewAddress(want, "")}, e.To)
		require.Empty(t, e.CC)
		require.Empty(t, e.BCC)
		require.Equal(t, []Address{NewAddress(want, "")}, msgs[i].Envelope().Recipients())
	}
	require.Len(t, email.To, 2, "caller's email must not be modified")
}

func TestMailer_SendEach_PartialFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("rejected")
	sender := &recordingSender{fail: map[string]error{"b@example.com": boom}}
	m := newTestMailer(t, sender, nil, testConfig())

	msgs, err := m.SendEach(context.Background(), &Email{
		To:      []Address{NewAddress("a@example.com", ""), NewAddress("b@example.com", ""), NewAddress("c@example.com", "")},
		Subject: "Fan out",
		Text:    "x",
	})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, ErrSendFailed)
	require.Contains(t, err.Error(), "b@example.com")

	require.Len(t, msgs, 3)
	require.NotNil(t, msgs[0])
	require.Nil(t, msgs[1])
	require.NotNil(t, msgs[2])
}

func TestMailer_SendEach_Validation(t *testing.T) {
	t.Parallel()

	m := newTestMailer(t, &recordingSender{}, nil, testConfig())
	_, err := m.SendEach(context.Background(), &Email{Subject: "S", Text: "x"})
	require.ErrorIs(t, err, ErrNoRecipient)
}
