package userop

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ContractCaller performs read-only eth_call requests.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// EntryPoint reads state of an ERC-4337 entry point.
type EntryPoint struct {
	address common.Address
	caller  ContractCaller
}

func NewEntryPoint(address common.Address, caller ContractCaller) *EntryPoint {
	return &EntryPoint{address: address, caller: caller}
}

func (ep *EntryPoint) Address() common.Address {
	return ep.address
}

// GetNonce returns the next nonce of sender for the given key at the latest block.
func (ep *EntryPoint) GetNonce(ctx context.Context, sender common.Address, key *big.Int) (*big.Int, error) {
	if key == nil {
		key = new(big.Int)
	}

	data, err := entryPointABI.Pack("getNonce", sender, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getNonce")
	}

	out, err := ep.caller.CallContract(ctx, ethereum.CallMsg{To: &ep.address, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call getNonce")
	}

	values, err := entryPointABI.Unpack("getNonce", out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack getNonce")
	}

	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected getNonce output")
	}

	return nonce, nil
}
