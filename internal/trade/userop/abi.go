package userop

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const entryPointABIJSON = `[
	{"type":"function","name":"getNonce","stateMutability":"view","inputs":[
		{"name":"sender","type":"address"},
		{"name":"key","type":"uint192"}],"outputs":[{"name":"nonce","type":"uint256"}]},
	{"type":"function","name":"handleOps","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"ops","type":"tuple[]","components":[
			{"name":"sender","type":"address"},
			{"name":"nonce","type":"uint256"},
			{"name":"initCode","type":"bytes"},
			{"name":"callData","type":"bytes"},
			{"name":"accountGasLimits","type":"bytes32"},
			{"name":"preVerificationGas","type":"uint256"},
			{"name":"gasFees","type":"bytes32"},
			{"name":"paymasterAndData","type":"bytes"},
			{"name":"signature","type":"bytes"}]},
		{"name":"beneficiary","type":"address"}]}
]`

// ERC-7579 account execution.
const accountABIJSON = `[
	{"type":"function","name":"execute","stateMutability":"payable","outputs":[],"inputs":[
		{"name":"mode","type":"bytes32"},
		{"name":"executionCalldata","type":"bytes"}]}
]`

var (
	entryPointABI = mustParseABI(entryPointABIJSON)
	accountABI    = mustParseABI(accountABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}

	return parsed
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}

	return typ
}

var (
	addressType = mustNewType("address")
	uint256Type = mustNewType("uint256")
	bytes32Type = mustNewType("bytes32")

	// keccak(initCode), keccak(callData) and keccak(paymasterAndData) replace the dynamic fields.
	packedOpArgs = abi.Arguments{
		{Type: addressType},
		{Type: uint256Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: uint256Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
	}

	opHashArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: addressType},
		{Type: uint256Type},
	}
)
