package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext returns the logger carried by ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// With derives a child logger carrying fields.
func With(ctx context.Context, fields map[string]any) context.Context {
	return WithContext(ctx, FromContext(ctx).With().Fields(fields).Logger())
}

// WithComponent tags log lines with the subsystem that wrote them.
func WithComponent(ctx context.Context, component string) context.Context {
	return withString(ctx, "component", component)
}

// WithRunID tags log lines with the run they belong to.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withString(ctx, "run_id", runID)
}

func withString(ctx context.Context, key, value string) context.Context {
	return WithContext(ctx, FromContext(ctx).With().Str(key, value).Logger())
}
