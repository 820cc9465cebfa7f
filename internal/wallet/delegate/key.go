package delegate

import (
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Key is the locally held delegate keypair. Its address is always derived from the private key.
type Key struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address

	// leases counts holders still signing with the key, see Manager.Lease.
	leases sync.WaitGroup
}

// NewKey wraps a private key.
func NewKey(privateKey *ecdsa.PrivateKey) *Key {
	return &Key{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// KeyFromBytes builds a Key from a raw 32 byte secp256k1 private key.
func KeyFromBytes(raw []byte) (*Key, error) {
	privateKey, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert private key to ECDSA")
	}

	return NewKey(privateKey), nil
}

func (k *Key) Address() common.Address {
	return k.address
}

// PrivateKey exposes the key for transaction signing.
func (k *Key) PrivateKey() *ecdsa.PrivateKey {
	return k.privateKey
}

// SignHash signs a 32 byte digest, returning [R ‖ S ‖ V] with V ∈ {0, 1}.
func (k *Key) SignHash(hash common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(hash.Bytes(), k.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign hash")
	}

	return sig, nil
}

// SignMessage signs data as an EIP-191 personal message, V ∈ {27, 28}.
func (k *Key) SignMessage(data []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(data), k.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}

	//nolint:mnd // legacy recovery id offset
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}

// SignAuthorization signs an EIP-7702 authorization delegating this key's account to implementation.
// nonce must be the account nonce the authorization will be applied with.
func (k *Key) SignAuthorization(chainID *big.Int, implementation common.Address, nonce uint64) (types.SetCodeAuthorization, error) {
	id, overflow := uint256.FromBig(chainID)
	if overflow {
		return types.SetCodeAuthorization{}, errors.New("chain id overflows uint256")
	}

	auth, err := types.SignSetCode(k.privateKey, types.SetCodeAuthorization{
		ChainID: *id,
		Address: implementation,
		Nonce:   nonce,
	})
	if err != nil {
		return types.SetCodeAuthorization{}, errors.Wrap(err, "failed to sign authorization")
	}

	return auth, nil
}

// Zero overwrites the private key scalar in memory.
func (k *Key) Zero() {
	if k.privateKey == nil || k.privateKey.D == nil {
		return
	}

	k.privateKey.D.SetInt64(0)
}
