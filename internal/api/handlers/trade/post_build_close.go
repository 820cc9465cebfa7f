package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostBuildCloseRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trade.POST("/build-close", postBuildCloseHandler(s))
}

func postBuildCloseHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostBuildClosePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Encoder.CloseTrade(body.Request(), s.Config.Trading.ExecutionFeeWei)
		if err != nil {
			util.LogFromEchoContext(c).Debug().Err(err).Msg("Failed to build close trade transaction")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
