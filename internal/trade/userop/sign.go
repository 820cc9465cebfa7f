package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// MessageSigner signs data as an EIP-191 personal message.
type MessageSigner interface {
	SignMessage(data []byte) ([]byte, error)
}

// Sign hashes op and stores the personal-sign signature of the hash in op.Signature.
func Sign(op *UserOperation, entryPoint common.Address, chainID *big.Int, signer MessageSigner) (common.Hash, error) {
	hash, err := HashUserOperation(op, entryPoint, chainID)
	if err != nil {
		return common.Hash{}, err
	}

	sig, err := signer.SignMessage(hash.Bytes())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to sign user operation")
	}

	op.Signature = sig

	return hash, nil
}
