package signer

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/util"
)

// Service signs transactions with a local EOA key
type Service struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewService creates a new signer for privateKey
func NewService(privateKey *ecdsa.PrivateKey) *Service {
	return &Service{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// NewServiceFromHex parses a hex encoded private key, with or without 0x prefix.
func NewServiceFromHex(hexKey string) (*Service, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert private key to ECDSA")
	}

	return NewService(privateKey), nil
}

func (s *Service) Address() common.Address {
	return s.address
}

// SignEVMTransaction signs an EIP-1559 transaction, or an EIP-7702 one when the request
// carries authorizations.
func (s *Service) SignEVMTransaction(ctx context.Context, req *SignEVMRequest) (*SignEVMResponse, error) {
	if req.ChainID == nil || req.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id is required")
	}
	if req.MaxFeePerGas == nil || req.MaxPriorityFeePerGas == nil {
		return nil, errors.New("fees are required")
	}

	// Verify from address matches private key
	if req.FromAddress != nil && *req.FromAddress != s.address {
		return nil, errors.New("from address does not match private key")
	}

	var (
		resp *SignEVMResponse
		err  error
	)
	if len(req.AuthorizationList) > 0 {
		resp, err = s.signSetCodeTransaction(req)
	} else {
		resp, err = s.signEIP1559Transaction(req)
	}
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("from", s.address.Hex()).
		Str("tx_hash", resp.TxHash.Hex()).
		Int("authorizations", len(req.AuthorizationList)).
		Msg("Signed transaction")

	return resp, nil
}
