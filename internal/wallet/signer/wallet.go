package signer

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/chain"
)

// Backend is the node access LocalWallet needs to send transactions.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestFees(ctx context.Context) (*big.Int, *big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// LocalWallet behaves like an injected browser wallet backed by a local key: it knows a set
// of chains, answers unknown chain switches with EIP-1193 code 4902 and signs what it is
// asked to send.
type LocalWallet struct {
	signer  *Service
	backend Backend

	mu      sync.Mutex
	known   map[int64]chain.AddChainParams
	active  int64
	backing int64
}

// NewLocalWallet returns a wallet connected to the backend's chain.
func NewLocalWallet(ctx context.Context, signer *Service, backend Backend) (*LocalWallet, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	id := chainID.Int64()

	return &LocalWallet{
		signer:  signer,
		backend: backend,
		known:   map[int64]chain.AddChainParams{id: {}},
		active:  id,
		backing: id,
	}, nil
}

func (w *LocalWallet) Address() common.Address {
	return w.signer.Address()
}

func (w *LocalWallet) ChainID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.active
}

// SwitchChain makes chainID active; unknown chains fail with code 4902.
func (w *LocalWallet) SwitchChain(_ context.Context, chainID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.known[chainID]; !ok {
		return &txerr.CodedError{
			Code:    txerr.CodeUnrecognizedChain,
			Message: "Unrecognized chain ID. Try adding the chain using wallet_addEthereumChain first.",
		}
	}

	w.active = chainID

	return nil
}

// AddChain registers a chain so a subsequent switch succeeds.
func (w *LocalWallet) AddChain(ctx context.Context, params chain.AddChainParams) error {
	id := params.ChainID.ToInt()
	if id.Sign() <= 0 || len(params.RPCURLs) == 0 {
		return errors.New("invalid chain parameters")
	}

	w.mu.Lock()
	w.known[id.Int64()] = params
	w.mu.Unlock()

	util.LogFromContext(ctx).Info().Int64("chain_id", id.Int64()).Str("name", params.ChainName).Msg("Added chain to wallet")

	return nil
}

// SendTransaction signs msg with the wallet key and broadcasts it on the active chain.
func (w *LocalWallet) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if msg.To == nil {
		return common.Hash{}, errors.New("contract creation is not supported")
	}

	w.mu.Lock()
	active, backing := w.active, w.backing
	w.mu.Unlock()

	if active != backing {
		return common.Hash{}, errors.Errorf("no node connected for chain %d", active)
	}

	from := w.signer.Address()
	msg.From = from

	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, err
	}

	maxFee, tip, err := w.backend.SuggestFees(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	gas := msg.Gas
	if gas == 0 {
		gas, err = w.backend.EstimateGas(ctx, msg)
		if err != nil {
			return common.Hash{}, err
		}
	}

	resp, err := w.signer.SignEVMTransaction(ctx, &SignEVMRequest{
		ChainID:              big.NewInt(active),
		To:                   *msg.To,
		Value:                msg.Value,
		GasLimit:             gas,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
		Nonce:                nonce,
		Data:                 msg.Data,
		FromAddress:          &from,
	})
	if err != nil {
		return common.Hash{}, txerr.Signing("sign transaction", err)
	}

	if err := w.backend.SendTransaction(ctx, resp.Transaction); err != nil {
		return common.Hash{}, err
	}

	util.LogFromContext(ctx).Info().Str("tx_hash", resp.TxHash.Hex()).Msg("Transaction sent")

	return resp.TxHash, nil
}
