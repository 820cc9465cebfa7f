package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/trade/positions"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostOpenTradesPnLRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trades.POST("/:trader/pnl", postOpenTradesPnLHandler(s))
}

// Gross PnL of every open trade of trader on the priced pairs.
func postOpenTradesPnLHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		trader, err := traderParam(c)
		if err != nil {
			return err
		}

		var body types.PostTradesPnLPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		trades, err := s.Positions.OpenTrades(ctx, trader, body.Pairs())
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.PositionsPnLResponse{
			Trader:    trader,
			Positions: positions.WithPnL(trades, body.Prices),
		})
	}
}
