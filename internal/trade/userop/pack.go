package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const uint128Bits = 128

// PackUint128Pair packs two uint128 values into one bytes32 slot: high 16 bytes = high,
// low 16 bytes = low.
func PackUint128Pair(high, low *big.Int) ([32]byte, error) {
	var out [32]byte

	for _, v := range []*big.Int{high, low} {
		if v == nil || v.Sign() < 0 || v.BitLen() > uint128Bits {
			return out, errors.Errorf("value %v does not fit into uint128", v)
		}
	}

	high.FillBytes(out[:16])
	low.FillBytes(out[16:])

	return out, nil
}

// UnpackUint128Pair is the inverse of PackUint128Pair.
func UnpackUint128Pair(slot [32]byte) (*big.Int, *big.Int) {
	return new(big.Int).SetBytes(slot[:16]), new(big.Int).SetBytes(slot[16:])
}

// Pack converts op to the EntryPoint v0.7 layout:
// accountGasLimits = verificationGasLimit ‖ callGasLimit, gasFees = maxPriorityFeePerGas ‖ maxFeePerGas.
func Pack(op *UserOperation) (*PackedUserOperation, error) {
	if op.Nonce == nil || op.MaxFeePerGas == nil || op.MaxPriorityFeePerGas == nil {
		return nil, errors.New("user operation is missing nonce or fees")
	}

	accountGasLimits, err := PackUint128Pair(
		new(big.Int).SetUint64(op.VerificationGasLimit),
		new(big.Int).SetUint64(op.CallGasLimit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack account gas limits")
	}

	gasFees, err := PackUint128Pair(op.MaxPriorityFeePerGas, op.MaxFeePerGas)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack gas fees")
	}

	return &PackedUserOperation{
		Sender:             op.Sender,
		Nonce:              op.Nonce,
		InitCode:           nonNil(op.InitCode),
		CallData:           nonNil(op.CallData),
		AccountGasLimits:   accountGasLimits,
		PreVerificationGas: new(big.Int).SetUint64(op.PreVerificationGas),
		GasFees:            gasFees,
		PaymasterAndData:   nonNil(op.PaymasterAndData),
		Signature:          nonNil(op.Signature),
	}, nil
}

// HashUserOperation returns the EntryPoint v0.7 user operation hash:
// keccak256(abi.encode(keccak256(pack(op)), entryPoint, chainId)). The signature is not covered.
func HashUserOperation(op *UserOperation, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	packed, err := Pack(op)
	if err != nil {
		return common.Hash{}, err
	}

	inner, err := packedOpArgs.Pack(
		packed.Sender,
		packed.Nonce,
		crypto.Keccak256Hash(packed.InitCode),
		crypto.Keccak256Hash(packed.CallData),
		packed.AccountGasLimits,
		packed.PreVerificationGas,
		packed.GasFees,
		crypto.Keccak256Hash(packed.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to encode user operation")
	}

	outer, err := opHashArgs.Pack(crypto.Keccak256Hash(inner), entryPoint, chainID)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to encode user operation hash")
	}

	return crypto.Keccak256Hash(outer), nil
}

// EncodeHandleOps builds handleOps([op], beneficiary) calldata.
func EncodeHandleOps(op *UserOperation, beneficiary common.Address) ([]byte, error) {
	packed, err := Pack(op)
	if err != nil {
		return nil, err
	}

	data, err := entryPointABI.Pack("handleOps", []PackedUserOperation{*packed}, beneficiary)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack handleOps")
	}

	return data, nil
}

// CalculateRelayGasLimit doubles the operation's total gas as margin for the outer transaction.
func CalculateRelayGasLimit(op *UserOperation) uint64 {
	const safetyFactor = 2
	return op.TotalGasLimit() * safetyFactor
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}
