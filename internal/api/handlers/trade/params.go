package trade

import (
	"net/http"
	"strconv"
	"strings"

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

// pairsQuery parses ?pairs=0,1,5. An absent parameter yields nil.
func pairsQuery(c echo.Context) ([]int64, error) {
	raw := strings.TrimSpace(c.QueryParam("pairs"))
	if raw == "" {
		return nil, nil
	}

	var pairs []int64
	for _, part := range strings.Split(raw, ",") {
		pair, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || pair < 0 {
			return nil, httperrors.NewHTTPError(http.StatusBadRequest, httperrors.TypeValidation, "Invalid pair index "+part)
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}
