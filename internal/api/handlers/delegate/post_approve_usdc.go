package delegate

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
)

func PostApproveUSDCRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.POST("/approve-usdc", postApproveUSDCHandler(s))
}

// Builds an unsigned, capped USDC approval to the Trading contract for the trader to sign.
func postApproveUSDCHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostApproveUSDCPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		amount := decimal.Zero
		if body.Amount != nil {
			amount = *body.Amount
		}

		tx, err := s.Encoder.Approve(s.Config.Contracts.Trading, amount)
		if err != nil {
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
