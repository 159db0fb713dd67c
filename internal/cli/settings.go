package cli

import (
	"time"

	"github.com/emercury-dev/mailer/pkg/logger"
	"github.com/emercury-dev/mailer/pkg/mailer"
	"github.com/emercury-dev/mailer/pkg/mailer/emercury"
	"github.com/emercury-dev/mailer/pkg/mailer/resend"
)

const (
	providerEmercury = "emercury"
	providerResend   = "resend"
)

// settings is the environment-driven part of the command configuration.
type settings struct {
	Provider string `env:"MAILER_PROVIDER" envDefault:"emercury"`

	// Timeout applies to the HTTP client of whichever provider is selected.
	Timeout time.Duration `env:"MAILER_HTTP_TIMEOUT" envDefault:"30s"`

	Emercury emercury.Config
	Resend   resend.Config
	Mailer   mailer.Config
	Log      logger.Config
}
