package relay

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// TransactionTypeEIP1559 marks a submission without authorization list. Relays may
// take a faster execution path for it.
const TransactionTypeEIP1559 = "eip1559"

// TradeParams is the call the delegate account executes through the relay.
type TradeParams struct {
	To    common.Address
	Data  []byte
	Value *big.Int

	// ForceAuthorization re-attaches the EIP-7702 authorization even if it was executed before.
	ForceAuthorization bool
}

// Result of a relayed trade.
type Result struct {
	TxHash     common.Hash       `json:"txHash"`
	TaskID     string            `json:"taskId"`
	UserOpHash common.Hash       `json:"userOpHash"`
	Provider   string            `json:"provider"`
	Authorized bool              `json:"authorized"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Authorization is the wire form of a signed EIP-7702 authorization.
type Authorization struct {
	ChainID hexutil.Big    `json:"chainId"`
	Address common.Address `json:"address"`
	Nonce   hexutil.Uint64 `json:"nonce"`
	R       hexutil.Big    `json:"r"`
	S       hexutil.Big    `json:"s"`
	V       hexutil.Uint64 `json:"v"`
	YParity hexutil.Uint64 `json:"yParity"`
}

func NewAuthorization(auth types.SetCodeAuthorization) Authorization {
	const legacyRecoveryOffset = 27

	return Authorization{
		ChainID: hexutil.Big(*auth.ChainID.ToBig()),
		Address: auth.Address,
		Nonce:   hexutil.Uint64(auth.Nonce),
		R:       hexutil.Big(*auth.R.ToBig()),
		S:       hexutil.Big(*auth.S.ToBig()),
		V:       hexutil.Uint64(auth.V) + legacyRecoveryOffset,
		YParity: hexutil.Uint64(auth.V),
	}
}

// SetCodeAuthorization converts back to the go-ethereum representation.
func (a Authorization) SetCodeAuthorization() types.SetCodeAuthorization {
	var chainID, r, s uint256.Int
	chainID.SetFromBig(a.ChainID.ToInt())
	r.SetFromBig(a.R.ToInt())
	s.SetFromBig(a.S.ToInt())

	return types.SetCodeAuthorization{
		ChainID: chainID,
		Address: a.Address,
		Nonce:   uint64(a.Nonce),
		V:       uint8(a.YParity), //nolint:gosec // y parity is 0 or 1
		R:       r,
		S:       s,
	}
}

// SubmitRequest is what a relay backend executes: a call to Target carrying Data.
// Exactly one of AuthorizationList and TransactionType is set.
type SubmitRequest struct {
	ChainID           *big.Int
	Target            common.Address
	Data              []byte
	Value             *big.Int
	GasLimit          uint64
	AuthorizationList []Authorization
	TransactionType   string
}

// Backend submits calls to a relay and reports their execution hash.
type Backend interface {
	IsConfigured() bool
	Submit(ctx context.Context, req *SubmitRequest) (string, error)
	// WaitForExecutionHash blocks until the task has an on-chain hash or ctx ends.
	WaitForExecutionHash(ctx context.Context, taskID string) (common.Hash, error)
}

// ProviderStatus describes a registered provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Current    bool   `json:"current"`
}

// Provider relays delegate trades.
type Provider interface {
	Name() string
	IsConfigured() bool
	RelayTrade(ctx context.Context, params TradeParams) (*Result, error)
	Status() ProviderStatus
}
