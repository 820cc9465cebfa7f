package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostBuildOpenRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trade.POST("/build-open", postBuildOpenHandler(s))
}

// Builds an unsigned delegatedAction(openTrade) for the delegate to sign.
func postBuildOpenHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromEchoContext(c)

		var body types.PostBuildOpenPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Encoder.OpenTrade(body.Intent(), s.Config.Trading.ExecutionFeeWei)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to build open trade transaction")
			return err
		}

		log.Debug().Str("to", tx.To.Hex()).Int("data_len", len(tx.Data)).Msg("Built open trade transaction")

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
