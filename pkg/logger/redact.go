package logger

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// DefaultSensitiveKeys are attribute keys whose values are never written.
var DefaultSensitiveKeys = []string{
	"api_key", "apikey", "token", "password", "secret", "authorization", "x-emercury-token",
}

// RedactHandler masks attributes whose key matches a sensitive key,
// case-insensitively, including attributes nested in groups.
type RedactHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

// NewRedactHandler wraps next. With no keys, DefaultSensitiveKeys is used.
func NewRedactHandler(next slog.Handler, keys ...string) slog.Handler {
	if len(keys) == 0 {
		keys = DefaultSensitiveKeys
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &RedactHandler{next: next, keys: set}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, rec slog.Record) error {
	clean := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.redact(a)
	}
	return &RedactHandler{next: h.next.WithAttrs(clean), keys: h.keys}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}

	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	clean := make([]slog.Attr, len(group))
	for i, ga := range group {
		clean[i] = h.redact(ga)
	}
	return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
}
