package delegate

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func GetCheckAllowanceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.GET("/check-allowance/:trader", getCheckAllowanceHandler(s))
}

func getCheckAllowanceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		trader, err := traderParam(c)
		if err != nil {
			return err
		}

		allowance, err := s.Setup.Allowance(c.Request().Context(), trader)
		if err != nil {
			return err
		}

		balance, err := s.Setup.Balance(c.Request().Context(), trader)
		if err != nil {
			return err
		}

		required := s.Config.Trading.MinAllowanceUSDC

		return util.ValidateAndReturn(c, http.StatusOK, &types.AllowanceResponse{
			Allowance:     allowance,
			Balance:       balance,
			Required:      required,
			HasSufficient: allowance.GreaterThanOrEqual(required),
		})
	}
}
