package delegate

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func GetTradingContractRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.GET("/trading-contract", getTradingContractHandler(s))
}

// USDC must be approved to the Trading contract, it pulls the collateral when opening.
func getTradingContractHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return util.ValidateAndReturn(c, http.StatusOK, &types.TradingContractResponse{
			Address: s.Config.Contracts.Trading,
		})
	}
}
