package trade_test

import (
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/httperrors"
	"github/chapool/go-trader/internal/test"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/types"
)

const trader = "0x00000000000000000000000000000000000000aa"

func openBody() map[string]interface{} {
	return map[string]interface{}{
		"trader":     trader,
		"pair_index": 1,
		"leverage":   "100",
		"is_long":    true,
		"collateral": "10",
		"open_price": "3000",
	}
}

func TestPostBuildOpen(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-open", openBody(), nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)

		require.NotNil(t, response.Tx)
		assert.Equal(t, s.Config.Contracts.Trading, response.Tx.To)
		assert.Equal(t, s.Config.Chain.ChainID, response.Tx.ChainID)

		decoded, err := encoder.DecodeOpenTrade(response.Tx.Data)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(trader), decoded.Trader)
		assert.True(t, decoded.Trade.Buy)
		assert.Equal(t, "1", decoded.Trade.PairIndex.String())
	})
}

func TestPostBuildOpenLeverageOutOfRange(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		body := openBody()
		body["leverage"] = "20"

		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-open", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostBuildOpenMissingDirection(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		body := openBody()
		delete(body, "is_long")

		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-open", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostBuildOpenBelowMinimumPosition(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		body := openBody()
		body["collateral"] = "0.5"

		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-open", body, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var response httperrors.HTTPError
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, httperrors.TypeValidation, response.Type)
	})
}

func TestPostBuildClose(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-close", map[string]interface{}{
			"trader":              trader,
			"pair_index":          1,
			"trade_index":         0,
			"collateral_to_close": "10",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.NotNil(t, response.Tx)
		assert.Equal(t, s.Config.Contracts.Trading, response.Tx.To)
	})
}

func TestPostBuildCloseMissingTradeIndex(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-close", map[string]interface{}{
			"trader":              trader,
			"pair_index":          1,
			"collateral_to_close": "10",
		}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostBuildUpdateTpSl(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/build-update-tpsl", map[string]interface{}{
			"trader":      trader,
			"pair_index":  1,
			"trade_index": 2,
			"take_profit": "4000",
			"stop_loss":   "2500",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.NotNil(t, response.Tx)
	})
}

func TestPostPnL(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/pnl", map[string]interface{}{
			"collateral":    "100",
			"leverage":      "10",
			"is_long":       false,
			"open_price":    "2000",
			"current_price": "1900",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.PnLResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, "50", response.PnL.String())
		assert.Equal(t, "50", response.PnLPercentage.String())
	})
}

func TestPostPnLInvalidBody(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/trade/pnl", map[string]interface{}{
			"collateral": "100",
		}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
