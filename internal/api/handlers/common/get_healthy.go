package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Liveness check
// Reports whether the delegate key is unlocked, trading is impossible otherwise.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Delegate.IsUnlocked() {
			return c.String(statusNotReady, "Delegate locked.")
		}

		return c.String(http.StatusOK, "Healthy.")
	}
}
