package delegate

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github/chapool/go-trader/internal/api/httperrors"
)

func traderParam(c echo.Context) (common.Address, error) {
	raw := c.Param("trader")
	if !common.IsHexAddress(raw) {
		return common.Address{}, httperrors.NewHTTPError(http.StatusBadRequest, httperrors.TypeValidation, "Invalid trader address")
	}

	return common.HexToAddress(raw), nil
}
