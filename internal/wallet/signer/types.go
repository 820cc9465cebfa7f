package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SignEVMRequest represents a request to sign an EVM transaction
type SignEVMRequest struct {
	ChainID              *big.Int        // Chain ID (8453 for Base, 1 for Ethereum mainnet, etc.)
	To                   common.Address  // Recipient or contract address
	Value                *big.Int        // Amount in wei, nil means zero
	GasLimit             uint64          // Gas limit
	MaxFeePerGas         *big.Int        // Max fee per gas (EIP-1559, in wei)
	MaxPriorityFeePerGas *big.Int        // Max priority fee per gas (EIP-1559, in wei)
	Nonce                uint64          // Transaction nonce
	Data                 []byte          // Transaction data (for contract calls)
	FromAddress          *common.Address // Optional, checked against the signing key

	// AuthorizationList turns the request into an EIP-7702 set code transaction.
	AuthorizationList []types.SetCodeAuthorization
}

// SignEVMResponse represents a signed EVM transaction
type SignEVMResponse struct {
	Transaction    *types.Transaction
	RawTransaction []byte      // RLP-encoded signed transaction
	TxHash         common.Hash // Transaction hash
}
