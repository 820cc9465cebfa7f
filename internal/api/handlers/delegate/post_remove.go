package delegate

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostRemoveRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.POST("/remove", postRemoveHandler(s))
}

// Builds an unsigned removeDelegate call. The trader signs it, the persisted setup flag is
// reconciled on the next status read.
func postRemoveHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostRemoveDelegatePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tx, err := s.Encoder.RemoveDelegate()
		if err != nil {
			return err
		}

		util.LogFromEchoContext(c).Debug().Str("trader", body.Trader.Hex()).Msg("Built remove delegate transaction")

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
