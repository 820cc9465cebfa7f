package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostPnLRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trade.POST("/pnl", postPnLHandler(s))
}

// Gross PnL of a position at the given price, fees excluded.
func postPnLHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostPnLPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		pnl, pct := encoder.GrossPnL(body.Position(), body.CurrentPrice)

		return util.ValidateAndReturn(c, http.StatusOK, &types.PnLResponse{
			CurrentPrice:  body.CurrentPrice,
			PnL:           pnl,
			PnLPercentage: pct,
		})
	}
}
