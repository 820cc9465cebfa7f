package test

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
	"github/chapool/go-trader/internal/wallet/node"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callArgs struct {
	To   *common.Address `json:"to"`
	Data hexutil.Bytes   `json:"data"`
	// some clients send input instead of data
	Input hexutil.Bytes `json:"input"`
}

// CallHandler answers an eth_call with the given calldata. A returned error reverts the call.
type CallHandler func(data []byte) ([]byte, error)

// FakeNode is an in-process JSON-RPC node answering the calls the engine makes.
// Contract reads are answered by the per address handlers set with SetCallHandler or SetCallResult.
type FakeNode struct {
	Server *httptest.Server
	Client *node.Client

	mu       sync.Mutex
	chainID  int64
	handlers map[common.Address]CallHandler
	down     bool
}

func NewFakeNode(t *testing.T, chainID int64) *FakeNode {
	t.Helper()

	f := &FakeNode{
		chainID:  chainID,
		handlers: make(map[common.Address]CallHandler),
	}

	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)

	client, err := node.Dial([]string{f.Server.URL}, 0)
	if err != nil {
		t.Fatalf("failed to dial fake node: %v", err)
	}
	t.Cleanup(client.Close)
	f.Client = client

	return f
}

// SetCallHandler routes every eth_call against to through h.
func (f *FakeNode) SetCallHandler(to common.Address, h CallHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[to] = h
}

// SetCallResult makes eth_call against to return out.
func (f *FakeNode) SetCallResult(to common.Address, out []byte) {
	f.SetCallHandler(to, func([]byte) ([]byte, error) { return out, nil })
}

// SetUint256Result makes eth_call against to return n as a single uint256.
func (f *FakeNode) SetUint256Result(to common.Address, n *big.Int) {
	f.SetCallResult(to, common.LeftPadBytes(n.Bytes(), 32))
}

// SetAddressResult makes eth_call against to return addr as a single address.
func (f *FakeNode) SetAddressResult(to common.Address, addr common.Address) {
	f.SetCallResult(to, common.LeftPadBytes(addr.Bytes(), 32))
}

// SetDown makes every request fail with 502.
func (f *FakeNode) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.down = down
}

func (f *FakeNode) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()

	if down {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	result, rpcErr := f.handle(req)
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *FakeNode) handle(req rpcRequest) (interface{}, *rpcError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch req.Method {
	case "eth_chainId":
		return hexutil.EncodeBig(big.NewInt(f.chainID)), nil
	case "eth_blockNumber":
		return "0x10", nil
	case "eth_maxPriorityFeePerGas":
		return "0xf4240", nil
	case "eth_getBlockByNumber":
		return map[string]interface{}{
			"number":           "0x10",
			"hash":             common.HexToHash("0x10").Hex(),
			"parentHash":       common.Hash{}.Hex(),
			"sha3Uncles":       common.Hash{}.Hex(),
			"miner":            common.Address{}.Hex(),
			"stateRoot":        common.Hash{}.Hex(),
			"transactionsRoot": common.Hash{}.Hex(),
			"receiptsRoot":     common.Hash{}.Hex(),
			"logsBloom":        hexutil.Encode(make([]byte, 256)),
			"difficulty":       "0x0",
			"gasLimit":         "0x1c9c380",
			"gasUsed":          "0x0",
			"timestamp":        "0x1",
			"extraData":        "0x",
			"mixHash":          common.Hash{}.Hex(),
			"nonce":            "0x0000000000000000",
			"baseFeePerGas":    "0x3b9aca00",
			"transactions":     []interface{}{},
			"uncles":           []interface{}{},
		}, nil
	case "eth_getTransactionCount":
		return "0x0", nil
	case "eth_estimateGas":
		return "0xea60", nil
	case "eth_getTransactionReceipt":
		return nil, nil
	case "eth_call":
		if len(req.Params) == 0 {
			return nil, &rpcError{Code: -32602, Message: "missing call arguments"}
		}

		var args callArgs
		if err := json.Unmarshal(req.Params[0], &args); err != nil || args.To == nil {
			return nil, &rpcError{Code: -32602, Message: "invalid call arguments"}
		}

		h, ok := f.handlers[*args.To]
		if !ok {
			return nil, &rpcError{Code: 3, Message: "execution reverted: " + strings.ToLower(args.To.Hex())}
		}

		data := args.Data
		if len(data) == 0 {
			data = args.Input
		}

		out, err := h(data)
		if err != nil {
			return nil, &rpcError{Code: 3, Message: "execution reverted: " + err.Error()}
		}

		return hexutil.Encode(out), nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}
