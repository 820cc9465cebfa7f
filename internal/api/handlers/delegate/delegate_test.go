package delegate_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/test"
	"github/chapool/go-trader/internal/types"
)

const trader = "0x00000000000000000000000000000000000000aa"

func TestGetStatusComplete(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, n *test.FakeNode) {
		delegateAddr, err := s.Delegate.Address(t.Context())
		require.NoError(t, err)

		n.SetAddressResult(s.Config.Contracts.Trading, delegateAddr)
		n.SetUint256Result(s.Config.Contracts.USDC, big.NewInt(500_000_000))

		res := test.PerformRequest(t, s, "GET", "/api/v1/delegate/status/"+trader, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.DelegateStatusResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.True(t, response.IsSetup)
		assert.True(t, response.IsDelegateSet)
		assert.True(t, response.HasAllowance)
		assert.Equal(t, "500", response.Allowance.String())
		require.NotNil(t, response.DelegateAddress)
		assert.Equal(t, delegateAddr, *response.DelegateAddress)

		complete, err := s.Delegate.IsSetupComplete(t.Context(), common.HexToAddress(trader))
		require.NoError(t, err)
		assert.True(t, complete)
	})
}

func TestGetStatusNotSetUp(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, n *test.FakeNode) {
		n.SetAddressResult(s.Config.Contracts.Trading, common.Address{})
		n.SetUint256Result(s.Config.Contracts.USDC, big.NewInt(0))

		res := test.PerformRequest(t, s, "GET", "/api/v1/delegate/status/"+trader, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.DelegateStatusResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.False(t, response.IsSetup)
		assert.False(t, response.IsDelegateSet)
		assert.False(t, response.HasAllowance)
		assert.Nil(t, response.DelegateAddress)
	})
}

func TestGetStatusInvalidTrader(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/delegate/status/not-an-address", nil, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestGetCheckAllowance(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, n *test.FakeNode) {
		n.SetUint256Result(s.Config.Contracts.USDC, big.NewInt(50_000_000))

		res := test.PerformRequest(t, s, "GET", "/api/v1/delegate/check-allowance/"+trader, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.AllowanceResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "50", response.Allowance.String())
		assert.Equal(t, "50", response.Balance.String())
		assert.Equal(t, "100", response.Required.String())
		assert.False(t, response.HasSufficient)
	})
}

func TestGetTradingContract(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/delegate/trading-contract", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TradingContractResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, s.Config.Contracts.Trading, response.Address)
	})
}

func TestPostApproveUSDC(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/approve-usdc", map[string]interface{}{
			"trader": trader,
			"amount": "250",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.NotNil(t, response.Tx)
		assert.Equal(t, s.Config.Contracts.USDC, response.Tx.To)
	})
}

func TestPostApproveUSDCAboveCap(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/approve-usdc", map[string]interface{}{
			"trader": trader,
			"amount": "10001",
		}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostSetup(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/setup", map[string]interface{}{
			"trader": trader,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.NotNil(t, response.Tx)
		assert.Equal(t, s.Config.Contracts.Multicall, response.Tx.To)
	})
}

func TestPostSetupWithoutDelegate(t *testing.T) {
	n := test.NewFakeNode(t, 8453)
	cfg := test.Config(n.Server.URL)
	cfg.Delegate.Password = ""

	test.WithTestServerConfigurable(t, cfg, n, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/setup", map[string]interface{}{
			"trader": trader,
		}, nil)
		require.Equal(t, http.StatusConflict, res.Result().StatusCode)
	})
}

func TestPostSetupMissingTrader(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/setup", map[string]interface{}{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostRemove(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/delegate/remove", map[string]interface{}{
			"trader": trader,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode, res.Body.String())

		var response types.BuildTxResponse
		test.ParseResponseAndValidate(t, res, &response)
		require.NotNil(t, response.Tx)
		assert.Equal(t, s.Config.Contracts.Trading, response.Tx.To)
	})
}
