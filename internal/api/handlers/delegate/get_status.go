package delegate

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/types"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/delegate"
)

func GetStatusRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Delegate.GET("/status/:trader", getStatusHandler(s))
}

// Reports whether trader registered this installation's delegate and approved USDC.
// The persisted setup flag is reconciled with what the chain reports.
func getStatusHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		trader, err := traderParam(c)
		if err != nil {
			return err
		}

		delegateAddr, err := s.Delegate.Address(ctx)
		if err != nil && !errors.Is(err, delegate.ErrNotFound) {
			return err
		}

		status, err := s.Setup.Status(ctx, trader, delegateAddr)
		if err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Str("trader", trader.Hex()).Msg("Failed to read setup status")
			return err
		}

		response := &types.DelegateStatusResponse{
			Trader:        trader,
			IsSetup:       status.Complete,
			IsDelegateSet: status.IsDelegateSet,
			Allowance:     status.Allowance,
			HasAllowance:  status.HasAllowance,
		}
		if status.DelegateOf != (common.Address{}) {
			response.DelegateAddress = &status.DelegateOf
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
