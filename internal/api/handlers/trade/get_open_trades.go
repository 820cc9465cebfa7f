package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/trade/positions"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func GetOpenTradesRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trades.GET("/:trader", getOpenTradesHandler(s))
}

// Lists the open trades of trader as stored on chain. ?pairs= limits the scanned pairs.
func getOpenTradesHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		trader, err := traderParam(c)
		if err != nil {
			return err
		}

		pairs, err := pairsQuery(c)
		if err != nil {
			return err
		}

		trades, err := s.Positions.OpenTrades(ctx, trader, pairs)
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Str("trader", trader.Hex()).Msg("Failed to read open trades")
			return err
		}
		if trades == nil {
			trades = []positions.OpenTrade{}
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.OpenTradesResponse{
			Trader: trader,
			Trades: trades,
		})
	}
}
