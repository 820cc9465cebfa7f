package node_test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/wallet/node"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newRPCServer answers JSON-RPC methods from results; an *rpcError value is sent as error.
func newRPCServer(t *testing.T, results map[string]interface{}) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, ok := results[req.Method]
		switch v := result.(type) {
		case *rpcError:
			resp["error"] = v
		default:
			if !ok {
				resp["error"] = &rpcError{Code: -32601, Message: "method not found"}
			} else {
				resp["result"] = v
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv, hits
}

func newDownServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	return srv, hits
}

func TestChainIDFailover(t *testing.T) {
	down, downHits := newDownServer(t)
	up, _ := newRPCServer(t, map[string]interface{}{"eth_chainId": "0x2105"})

	client, err := node.Dial([]string{down.URL, up.URL}, 0)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	chainID, err := client.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(8453), chainID.Int64())
	assert.Equal(t, int32(1), downHits.Load())

	// the healthy node stays current
	_, err = client.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(1), downHits.Load())
}

func TestAllNodesDown(t *testing.T) {
	a, _ := newDownServer(t)
	b, _ := newDownServer(t)

	client, err := node.Dial([]string{a.URL, b.URL}, 0)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.BlockNumber(t.Context())
	require.Error(t, err)
	assert.True(t, txerr.Is(err, txerr.KindNetwork))
}

func TestReceiptNotFound(t *testing.T) {
	srv, _ := newRPCServer(t, map[string]interface{}{"eth_getTransactionReceipt": nil})

	client, err := node.Dial([]string{srv.URL}, 0)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.TransactionReceipt(t.Context(), common.HexToHash("0x01"))
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestRPCErrorDoesNotFailOver(t *testing.T) {
	first, _ := newRPCServer(t, map[string]interface{}{
		"eth_call": &rpcError{Code: 3, Message: "execution reverted"},
	})
	second, secondHits := newRPCServer(t, map[string]interface{}{"eth_call": "0x"})

	client, err := node.Dial([]string{first.URL, second.URL}, 0)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	to := common.HexToAddress("0x01")
	_, err = client.CallContract(t.Context(), ethereum.CallMsg{To: &to}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, txerr.ErrorCode(err))
	assert.Equal(t, int32(0), secondHits.Load())
}

func TestSuggestFees(t *testing.T) {
	header := &types.Header{
		Difficulty: big.NewInt(0),
		Number:     big.NewInt(1),
		BaseFee:    big.NewInt(100),
	}

	srv, _ := newRPCServer(t, map[string]interface{}{
		"eth_maxPriorityFeePerGas": "0xa",
		"eth_getBlockByNumber":     header,
	})

	client, err := node.Dial([]string{srv.URL}, 100)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	maxFee, tip, err := client.SuggestFees(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "10", tip.String())
	assert.Equal(t, "210", maxFee.String())
}

func TestDialRequiresURL(t *testing.T) {
	_, err := node.Dial(nil, 0)
	assert.Error(t, err)
}
