package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Level  string       `env:"LOG_LEVEL" envDefault:"info"`
	Format string       `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig

	// Output receives formatted records. Defaults to os.Stdout.
	Output io.Writer
}

// New creates a logger from cfg. Records pass through context extractors,
// then secret redaction, then the JSON or text handler and Sentry when
// a DSN is configured.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		handler = slog.NewJSONHandler(out, opts)
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, cfg.Format)
	}

	if cfg.Sentry.DSN != "" {
		sh, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			slog.New(handler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			handler = newMultiHandler(handler, sh)
		}
	}

	return slog.New(NewLogHandlerDecorator(NewRedactHandler(handler), extractors...)), nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	l, err := New(cfg, extractors...)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}
