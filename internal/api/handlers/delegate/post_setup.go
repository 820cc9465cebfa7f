package delegate

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/httperrors"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/delegate"
)

func PostSetupRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.POST("/setup", postSetupHandler(s))
}

// Builds the unsigned one-time setup multicall (setDelegate + USDC approval) for the trader.
func postSetupHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body types.PostDelegateSetupPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		var delegateAddr = body.DelegateAddress
		if delegateAddr == nil {
			addr, err := s.Delegate.Address(ctx)
			if err != nil {
				if errors.Is(err, delegate.ErrNotFound) {
					return httperrors.NewHTTPError(http.StatusConflict, httperrors.TypeGeneric, "No delegate key created yet")
				}
				return err
			}
			delegateAddr = &addr
		}

		tx, err := s.Setup.BuildSetupTx(*delegateAddr)
		if err != nil {
			return err
		}

		util.LogFromContext(ctx).Debug().
			Str("trader", body.Trader.Hex()).
			Str("delegate", delegateAddr.Hex()).
			Msg("Built setup transaction")

		return util.ValidateAndReturn(c, http.StatusOK, &types.BuildTxResponse{Tx: tx})
	}
}
