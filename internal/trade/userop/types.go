package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UserOperation is an ERC-4337 user operation as seen by clients. Gas and fee fields are packed
// into bytes32 slots only when hashed or sent to the entry point.
type UserOperation struct {
	Sender               common.Address `json:"sender"`
	Nonce                *big.Int       `json:"nonce"`
	InitCode             []byte         `json:"initCode"`
	CallData             []byte         `json:"callData"`
	CallGasLimit         uint64         `json:"callGasLimit"`
	VerificationGasLimit uint64         `json:"verificationGasLimit"`
	PreVerificationGas   uint64         `json:"preVerificationGas"`
	MaxFeePerGas         *big.Int       `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int       `json:"maxPriorityFeePerGas"`
	PaymasterAndData     []byte         `json:"paymasterAndData"`
	Signature            []byte         `json:"signature"`
}

// TotalGasLimit returns total gas required for the operation.
func (op *UserOperation) TotalGasLimit() uint64 {
	return op.CallGasLimit + op.VerificationGasLimit + op.PreVerificationGas
}

// GasLimits are the fixed limits every built operation carries. Trade calls are gas heavy,
// low values make the relay's simulation fail.
type GasLimits struct {
	CallGasLimit         uint64
	VerificationGasLimit uint64
	PreVerificationGas   uint64
}

func DefaultGasLimits() GasLimits {
	const (
		defaultCallGasLimit         = 1_500_000
		defaultVerificationGasLimit = 500_000
		defaultPreVerificationGas   = 100_000
	)

	return GasLimits{
		CallGasLimit:         defaultCallGasLimit,
		VerificationGasLimit: defaultVerificationGasLimit,
		PreVerificationGas:   defaultPreVerificationGas,
	}
}

// Fees are the EIP-1559 fee caps of an operation.
type Fees struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// PackedUserOperation is the EntryPoint v0.7 on-chain representation.
type PackedUserOperation struct {
	Sender             common.Address
	Nonce              *big.Int
	InitCode           []byte
	CallData           []byte
	AccountGasLimits   [32]byte
	PreVerificationGas *big.Int
	GasFees            [32]byte
	PaymasterAndData   []byte
	Signature          []byte
}
