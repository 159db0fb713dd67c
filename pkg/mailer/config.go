package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// FromEmail may carry a display name ("Team <team@example.com>");
	// FromName overrides it when set.
	FromEmail       string `env:"MAILER_FROM_EMAIL"`
	FromName        string `env:"MAILER_FROM_NAME"`
	ReplyTo         string `env:"MAILER_REPLY_TO"`
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	DefaultLayout   string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
	FanOutWorkers   int    `env:"MAILER_FANOUT_WORKERS" envDefault:"4"`
}
