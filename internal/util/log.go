package util

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the logger attached to ctx, falling back to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}

	return l
}

// LogFromEchoContext returns the request scoped logger of an echo request.
func LogFromEchoContext(c echo.Context) *zerolog.Logger {
	return LogFromContext(c.Request().Context())
}

// WithComponent attaches a component scoped logger to ctx.
func WithComponent(ctx context.Context, component string) context.Context {
	l := LogFromContext(ctx).With().Str("component", component).Logger()
	return l.WithContext(ctx)
}
