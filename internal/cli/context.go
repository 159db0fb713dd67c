package cli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type runIDKey struct{}

func withRunID(ctx context.Context) context.Context {
	return context.WithValue(ctx, runIDKey{}, uuid.NewString())
}

// runIDExtractor tags every record of one invocation with the same id.
func runIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return slog.String("run_id", id), true
	}
	return slog.Attr{}, false
}
