package trade

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostBuildUpdateTpSlRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Trade.POST("/build-update-tpsl", postBuildUpdateTpSlHandler(s))
}

func postBuildUpdateTpSlHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostBuildUpdateTpSlPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Encoder.UpdateTpSl(body.Request(), s.Config.Trading.ExecutionFeeWei)
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
