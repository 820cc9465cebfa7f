package setup

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/confirm"
	"github/chapool/go-trader/internal/wallet/chain"
)

// Wallet is the trader's own wallet. SwitchChain fails with EIP-1193 code 4902 for chains the
// wallet does not know yet.
type Wallet interface {
	Address() common.Address
	SwitchChain(ctx context.Context, chainID int64) error
	AddChain(ctx context.Context, params chain.AddChainParams) error
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
}

// Chain reads contract state and estimates gas.
type Chain interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Flags persists the per trader setup flag.
type Flags interface {
	IsSetupComplete(ctx context.Context, trader common.Address) (bool, error)
	SetSetupComplete(ctx context.Context, trader common.Address, complete bool) error
}

// Confirmer waits for the setup transaction to land.
type Confirmer interface {
	Await(ctx context.Context, hash common.Hash) (confirm.Session, error)
}

type Config struct {
	ChainID int64
	// FallbackGasLimit is used for every call whose estimate failed.
	FallbackGasLimit uint64
	// MulticallOverhead is added on top of the summed per call limits.
	MulticallOverhead uint64
	// MinAllowanceUSDC is the allowance below which setup counts as incomplete.
	MinAllowanceUSDC decimal.Decimal
}

// Status is the on-chain setup state of a trader/delegate pair.
type Status struct {
	Trader        common.Address  `json:"trader"`
	Delegate      common.Address  `json:"delegate"`
	DelegateOf    common.Address  `json:"delegateOf"`
	IsDelegateSet bool            `json:"isDelegateSet"`
	Allowance     decimal.Decimal `json:"allowance"`
	HasAllowance  bool            `json:"hasAllowance"`
	Complete      bool            `json:"complete"`
	// Persisted is the stored flag before reconciliation.
	Persisted  bool `json:"persisted"`
	Reconciled bool `json:"reconciled"`
}

// Result of a setup run.
type Result struct {
	TxHash   common.Hash `json:"txHash"`
	GasLimit uint64      `json:"gasLimit"`
	// Optimistic is set when the post submission re-check could not confirm the setup.
	Optimistic bool    `json:"optimistic"`
	Status     *Status `json:"status,omitempty"`
}
