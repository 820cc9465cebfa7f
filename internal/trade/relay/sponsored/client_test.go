package sponsored_test

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/trade/relay/sponsored"
	"github/chapool/go-trader/internal/txerr"
)

var entryPoint = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")

func newClient(url string) *sponsored.Client {
	return sponsored.NewClient(config.SponsoredRelay{
		BaseURL:         url,
		APIKey:          "secret",
		RequestTimeout:  time.Second,
		StatusInterval:  5 * time.Millisecond,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
	})
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, newClient("http://relay").IsConfigured())
	assert.False(t, sponsored.NewClient(config.SponsoredRelay{BaseURL: "http://relay"}).IsConfigured())
}

func TestSubmit(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/relays/sponsored-call", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"taskId":"0xtask"}`))
	}))
	t.Cleanup(srv.Close)

	taskID, err := newClient(srv.URL).Submit(t.Context(), &relay.SubmitRequest{
		ChainID:         big.NewInt(8453),
		Target:          entryPoint,
		Data:            []byte{0xde, 0xad},
		Value:           new(big.Int),
		GasLimit:        4_200_000,
		TransactionType: relay.TransactionTypeEIP1559,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xtask", taskID)

	assert.Equal(t, "8453", body["chainId"])
	assert.Equal(t, "0xdead", body["data"])
	assert.Equal(t, "secret", body["sponsorApiKey"])
	assert.Equal(t, "4200000", body["gasLimit"])
	assert.Equal(t, "eip1559", body["transactionType"])
	assert.NotContains(t, body, "authorizationList")
	assert.NotContains(t, body, "value")
}

func TestSubmitRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"message":"try later"}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"taskId":"0xtask"}`))
	}))
	t.Cleanup(srv.Close)

	taskID, err := newClient(srv.URL).Submit(t.Context(), &relay.SubmitRequest{ChainID: big.NewInt(1), Target: entryPoint})
	require.NoError(t, err)
	assert.Equal(t, "0xtask", taskID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"insufficient balance for sponsor"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := newClient(srv.URL).Submit(t.Context(), &relay.SubmitRequest{ChainID: big.NewInt(1), Target: entryPoint})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var httpErr *sponsored.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "insufficient balance for sponsor", httpErr.Message)
	assert.True(t, txerr.LooksLikeInsufficientBalance(err))
}

func statusServer(t *testing.T, states ...string) *httptest.Server {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/status/0xtask", r.URL.Path)

		i := int(calls.Add(1)) - 1
		if i >= len(states) {
			i = len(states) - 1
		}

		task := map[string]interface{}{"taskId": "0xtask", "taskState": states[i]}
		switch states[i] {
		case sponsored.StateExecPending, sponsored.StateExecSuccess:
			task["transactionHash"] = "0x00000000000000000000000000000000000000000000000000000000000000ab"
		case sponsored.StateExecReverted:
			task["lastCheckMessage"] = "execution reverted: PRICE_IMPACT"
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"task": task})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestWaitForExecutionHash(t *testing.T) {
	srv := statusServer(t, sponsored.StateCheckPending, sponsored.StateCheckPending, sponsored.StateExecPending)

	hash, err := newClient(srv.URL).WaitForExecutionHash(t.Context(), "0xtask")
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xab"), hash)
}

func TestWaitForExecutionHashReverted(t *testing.T) {
	srv := statusServer(t, sponsored.StateCheckPending, sponsored.StateExecReverted)

	_, err := newClient(srv.URL).WaitForExecutionHash(t.Context(), "0xtask")
	require.Error(t, err)
	assert.True(t, txerr.Is(err, txerr.KindProtocolRevert))
	assert.Contains(t, err.Error(), "PRICE_IMPACT")
}

func TestWaitForExecutionHashHonoursContext(t *testing.T) {
	srv := statusServer(t, sponsored.StateCheckPending)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	_, err := newClient(srv.URL).WaitForExecutionHash(ctx, "0xtask")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
