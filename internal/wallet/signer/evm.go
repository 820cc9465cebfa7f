package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// signEIP1559Transaction signs an EIP-1559 transaction
func (s *Service) signEIP1559Transaction(req *SignEVMRequest) (*SignEVMResponse, error) {
	to := req.To

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   req.ChainID,
		Nonce:     req.Nonce,
		GasTipCap: req.MaxPriorityFeePerGas,
		GasFeeCap: req.MaxFeePerGas,
		Gas:       req.GasLimit,
		To:        &to,
		Value:     valueOrZero(req.Value),
		Data:      req.Data,
	})

	return s.sign(tx, types.NewLondonSigner(req.ChainID))
}

// signSetCodeTransaction signs an EIP-7702 transaction carrying req.AuthorizationList
func (s *Service) signSetCodeTransaction(req *SignEVMRequest) (*SignEVMResponse, error) {
	chainID, err := toUint256("chain id", req.ChainID)
	if err != nil {
		return nil, err
	}
	tipCap, err := toUint256("max priority fee", req.MaxPriorityFeePerGas)
	if err != nil {
		return nil, err
	}
	feeCap, err := toUint256("max fee", req.MaxFeePerGas)
	if err != nil {
		return nil, err
	}
	value, err := toUint256("value", valueOrZero(req.Value))
	if err != nil {
		return nil, err
	}

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.SetCodeTx{
		ChainID:   chainID,
		Nonce:     req.Nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       req.GasLimit,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
		AuthList:  req.AuthorizationList,
	})

	return s.sign(tx, types.NewPragueSigner(req.ChainID))
}

func (s *Service) sign(tx *types.Transaction, signer types.Signer) (*SignEVMResponse, error) {
	signedTx, err := types.SignTx(tx, signer, s.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	// Encode transaction to RLP
	txBytes, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction")
	}

	return &SignEVMResponse{
		Transaction:    signedTx,
		RawTransaction: txBytes,
		TxHash:         signedTx.Hash(),
	}, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}

func toUint256(name string, v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return nil, errors.Errorf("%s is required", name)
	}

	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errors.Errorf("%s overflows uint256", name)
	}

	return u, nil
}
