package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Builder assembles unsigned user operations with fixed gas limits.
type Builder struct {
	limits GasLimits
}

func NewBuilder(limits GasLimits) *Builder {
	return &Builder{limits: limits}
}

// Build wraps (target, value, data) into an execute call sent from sender.
func (b *Builder) Build(sender common.Address, nonce *big.Int, target common.Address, value *big.Int, data []byte, fees Fees) (*UserOperation, error) {
	if nonce == nil {
		return nil, errors.New("nonce is required")
	}
	if fees.MaxFeePerGas == nil || fees.MaxPriorityFeePerGas == nil {
		return nil, errors.New("fees are required")
	}
	if fees.MaxPriorityFeePerGas.Cmp(fees.MaxFeePerGas) > 0 {
		return nil, errors.New("max priority fee exceeds max fee")
	}

	callData, err := Execute(target, value, data)
	if err != nil {
		return nil, err
	}

	return &UserOperation{
		Sender:               sender,
		Nonce:                new(big.Int).Set(nonce),
		InitCode:             []byte{},
		CallData:             callData,
		CallGasLimit:         b.limits.CallGasLimit,
		VerificationGasLimit: b.limits.VerificationGasLimit,
		PreVerificationGas:   b.limits.PreVerificationGas,
		MaxFeePerGas:         new(big.Int).Set(fees.MaxFeePerGas),
		MaxPriorityFeePerGas: new(big.Int).Set(fees.MaxPriorityFeePerGas),
		PaymasterAndData:     []byte{},
		Signature:            []byte{},
	}, nil
}
