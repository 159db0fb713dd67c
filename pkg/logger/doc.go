// Package logger builds log/slog loggers with context extraction, secret
// redaction and optional Sentry forwarding.
//
// # Usage
//
//	var cfg logger.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	log, err := logger.New(cfg, requestIDExtractor)
//	if err != nil {
//		return err
//	}
//	log.InfoContext(ctx, "email sent", slog.String("message_id", id))
//
// LOG_LEVEL selects debug, info, warn or error; LOG_FORMAT selects json
// (default) or text. When SENTRY_DSN is set, records are also forwarded to
// Sentry: errors become issues, warnings are stored as logs. A failing
// Sentry initialization is reported once and logging continues locally.
// Sentry delivers in the background, so short-lived processes should call
// Flush before exiting.
//
// # Context Extractors
//
// A ContextExtractor pulls a request-scoped attribute out of the context:
//
//	requestIDExtractor := func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
// Extractors run on every record; returning false skips the attribute.
//
// # Redaction
//
// Attributes whose key is one of DefaultSensitiveKeys (api_key, token,
// authorization and similar) are written as [REDACTED], also inside groups.
// NewRedactHandler wraps any slog.Handler with a custom key list.
//
// NewNope returns a logger that discards everything, the default for
// library types that accept an optional logger.
package logger
