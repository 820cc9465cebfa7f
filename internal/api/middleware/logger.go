package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger attaches a request scoped zerolog logger to the request context and logs every
// request once it completed.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			l := log.With().
				Str("id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			level := zerolog.InfoLevel
			if c.Response().Status >= 500 {
				level = zerolog.ErrorLevel
			}

			l.WithLevel(level).
				Int("status", c.Response().Status).
				Dur("duration_ms", time.Since(start)).
				Int64("bytes_out", c.Response().Size).
				Msg("Request handled")

			return nil
		}
	}
}
