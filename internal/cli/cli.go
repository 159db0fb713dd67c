package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emercury-dev/mailer/pkg/config"
	"github.com/emercury-dev/mailer/pkg/logger"
	"github.com/emercury-dev/mailer/pkg/mailer"
	"github.com/emercury-dev/mailer/pkg/mailer/emercury"
	"github.com/emercury-dev/mailer/pkg/mailer/resend"
)

// sentryFlushTimeout bounds how long a run waits for Sentry delivery on exit.
const sentryFlushTimeout = 2 * time.Second

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Options wires the command to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// Environ replaces the process environment when non-nil.
	Environ map[string]string

	// HTTPClient replaces the client built from MAILER_HTTP_TIMEOUT.
	HTTPClient *http.Client
}

type flags struct {
	to, cc, bcc []string
	from        string
	replyTo     string
	subject     string
	html        string
	htmlFile    string
	text        string
	textFile    string
	template    string
	templates   string
	layout      string
	data        string
	each        bool
	envFiles    []string
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cmd := NewCommand(opts)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(opts.Stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return ExitUsage
	default:
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		return ExitFailure
	}
}

// NewCommand builds the emercury-send root command.
func NewCommand(opts Options) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "emercury-send",
		Short: "Send an email through the Emercury API",
		Long: `emercury-send sends one email, or one copy per recipient with --each,
through the provider selected by MAILER_PROVIDER (emercury or resend).

Bodies come from --html/--text, from files, or from a markdown template
rendered with --data.`,
		Example: `  EMERCURY_API_KEY=... emercury-send --from team@example.com \
    --to user@example.com --subject Hello --text "Hi there"

  emercury-send --to a@example.com --to b@example.com --each \
    --templates ./emails --template welcome.md --data '{"Name":"Ann"}'`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return asUsage(fmt.Errorf("unexpected arguments: %v", args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f, opts)
		},
	}
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return asUsage(err)
	})

	fl := cmd.Flags()
	fl.StringArrayVar(&f.to, "to", nil, "recipient address (repeatable)")
	fl.StringArrayVar(&f.cc, "cc", nil, "carbon copy address (repeatable)")
	fl.StringArrayVar(&f.bcc, "bcc", nil, "blind carbon copy address (repeatable)")
	fl.StringVar(&f.from, "from", "", "sender address (default MAILER_FROM_EMAIL)")
	fl.StringVar(&f.replyTo, "reply-to", "", "reply-to address (default MAILER_REPLY_TO)")
	fl.StringVarP(&f.subject, "subject", "s", "", "subject line")
	fl.StringVar(&f.html, "html", "", "HTML body")
	fl.StringVar(&f.htmlFile, "html-file", "", "read the HTML body from a file")
	fl.StringVar(&f.text, "text", "", "plain text body")
	fl.StringVar(&f.textFile, "text-file", "", "read the plain text body from a file")
	fl.StringVarP(&f.template, "template", "t", "", "markdown template name")
	fl.StringVar(&f.templates, "templates", ".", "template directory, layouts are read from its layouts/ subdirectory")
	fl.StringVar(&f.layout, "layout", "", "layout name (default MAILER_DEFAULT_LAYOUT)")
	fl.StringVar(&f.data, "data", "", "template data as a JSON object")
	fl.BoolVar(&f.each, "each", false, "send a separate copy to every recipient")
	fl.StringArrayVar(&f.envFiles, "env-file", nil, "extra env file to load (repeatable)")

	return cmd
}

func (f *flags) validate() error {
	switch {
	case len(f.to) == 0 && len(f.cc) == 0 && len(f.bcc) == 0:
		return errors.New("at least one of --to, --cc or --bcc is required")
	case f.html != "" && f.htmlFile != "":
		return errors.New("--html and --html-file are mutually exclusive")
	case f.text != "" && f.textFile != "":
		return errors.New("--text and --text-file are mutually exclusive")
	case f.template != "" && (f.html != "" || f.htmlFile != "" || f.text != "" || f.textFile != ""):
		return errors.New("--template cannot be combined with literal bodies")
	case f.template == "" && f.data != "":
		return errors.New("--data requires --template")
	}
	return nil
}

func run(ctx context.Context, f *flags, opts Options) error {
	if err := f.validate(); err != nil {
		return asUsage(err)
	}

	var cfgOpts []config.Option
	if opts.Environ != nil {
		cfgOpts = append(cfgOpts, config.WithEnvironment(opts.Environ))
	}
	if len(f.envFiles) > 0 {
		cfgOpts = append(cfgOpts, config.WithEnvFiles(f.envFiles...))
	}

	var s settings
	if err := config.Load(&s, cfgOpts...); err != nil {
		return err
	}

	ctx = withRunID(ctx)
	s.Log.Output = opts.Stderr
	log, err := logger.New(s.Log, runIDExtractor)
	if err != nil {
		return asUsage(err)
	}
	if s.Log.Sentry.DSN != "" {
		defer logger.Flush(sentryFlushTimeout)
	}

	email, err := buildEmail(f)
	if err != nil {
		return err
	}

	sender, err := newSender(s, opts.HTTPClient, log)
	if err != nil {
		return err
	}

	var renderer *mailer.Renderer
	if f.template != "" {
		renderer = mailer.NewRenderer(os.DirFS(f.templates))
	}

	m, err := mailer.New(sender, renderer, s.Mailer)
	if err != nil {
		return asUsage(err)
	}

	sent, err := send(ctx, m, f, email)
	for _, msg := range sent {
		if msg != nil {
			fmt.Fprintf(opts.Stdout, "%s %s\n", sender, msg.MessageID())
		}
	}
	if err != nil {
		log.ErrorContext(ctx, "send failed", slog.String("provider", sender.String()), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type describedSender interface {
	mailer.Sender
	fmt.Stringer
}

func newSender(s settings, client *http.Client, log *slog.Logger) (describedSender, error) {
	if client == nil {
		client = &http.Client{Timeout: s.Timeout}
	}

	switch s.Provider {
	case "", providerEmercury:
		sender, err := emercury.New(s.Emercury, emercury.WithHTTPClient(client), emercury.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return sender, nil
	case providerResend:
		sender, err := resend.New(s.Resend, resend.WithHTTPClient(client))
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, asUsage(fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider))
	}
}

// buildEmail collects addresses and literal bodies from flags.
func buildEmail(f *flags) (*mailer.Email, error) {
	email := &mailer.Email{Subject: f.subject}

	var err error
	if email.To, err = parseAddresses(f.to); err != nil {
		return nil, err
	}
	if email.CC, err = parseAddresses(f.cc); err != nil {
		return nil, err
	}
	if email.BCC, err = parseAddresses(f.bcc); err != nil {
		return nil, err
	}
	if f.from != "" {
		if email.From, err = mailer.ParseAddress(f.from); err != nil {
			return nil, asUsage(err)
		}
	}
	if f.replyTo != "" {
		if email.ReplyTo, err = mailer.ParseAddressList(f.replyTo); err != nil {
			return nil, asUsage(err)
		}
	}

	if email.HTML, err = body(f.html, f.htmlFile); err != nil {
		return nil, err
	}
	if email.Text, err = body(f.text, f.textFile); err != nil {
		return nil, err
	}
	return email, nil
}

func send(ctx context.Context, m *mailer.Mailer, f *flags, email *mailer.Email) ([]*mailer.SentMessage, error) {
	if f.template == "" {
		if email.Subject == "" {
			return nil, asUsage(errors.New("--subject is required without --template"))
		}
		if email.HTML == "" && email.Text == "" {
			return nil, asUsage(errors.New("one of --html, --html-file, --text, --text-file or --template is required"))
		}
		if f.each {
			return m.SendEach(ctx, email)
		}
		msg, err := m.SendRaw(ctx, email)
		return []*mailer.SentMessage{msg}, err
	}

	data, err := templateData(f.data)
	if err != nil {
		return nil, err
	}

	// Templates are rendered per recipient; CC and BCC ride along unless
	// --each asks for separate copies.
	params := mailer.SendParams{
		Template: f.template,
		Data:     data,
		Subject:  email.Subject,
		Layout:   f.layout,
		From:     email.From,
		ReplyTo:  email.ReplyTo,
	}

	targets := email.To
	if f.each {
		targets = email.Recipients()
	} else {
		params.CC = email.CC
		params.BCC = email.BCC
		if len(targets) == 0 {
			return nil, asUsage(errors.New("--to is required with --template unless --each is set"))
		}
	}

	var (
		sent []*mailer.SentMessage
		errs []error
	)
	for _, rcpt := range targets {
		params.To = rcpt
		msg, err := m.Send(ctx, params)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rcpt.Email, err))
			continue
		}
		sent = append(sent, msg)
	}
	return sent, errors.Join(errs...)
}

func parseAddresses(values []string) ([]mailer.Address, error) {
	var out []mailer.Address
	for _, v := range values {
		list, err := mailer.ParseAddressList(v)
		if err != nil {
			return nil, asUsage(err)
		}
		out = append(out, list...)
	}
	return out, nil
}

func body(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", asUsage(err)
	}
	return string(raw), nil
}

func templateData(raw string) (map[string]any, error) {
	data := map[string]any{}
	if raw == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, asUsage(fmt.Errorf("--data: %w", err))
	}
	return data, nil
}
