package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel selects which levels are stored as Sentry logs: warn (default) or error.
	MinLevel slog.Level
}

// newSentryHandler initializes the Sentry SDK and returns a handler that
// forwards records to it. Errors become Sentry issues.
func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), nil
}

// Flush waits up to timeout for buffered Sentry events and logs to be
// delivered. It reports false when the timeout was reached. Without an
// initialized Sentry client it returns immediately.
func Flush(timeout time.Duration) bool {
	if sentry.CurrentHub().Client() == nil {
		return true
	}
	return sentry.Flush(timeout)
}
