package common

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/util"
)

const (
	statusNotReady   = 521
	readinessTimeout = 2 * time.Second
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. the node answers).
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			util.LogFromEchoContext(c).Warn().Msg("Readiness check failed, server not initialized")
			return c.String(statusNotReady, "Not ready.")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
		defer cancel()

		if _, err := s.Node.BlockNumber(ctx); err != nil {
			util.LogFromEchoContext(c).Warn().Err(err).Msg("Readiness check failed, node unreachable")
			return c.String(statusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
