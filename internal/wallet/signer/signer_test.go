package signer_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/wallet/chain"
	"github/chapool/go-trader/internal/wallet/delegate"
	"github/chapool/go-trader/internal/wallet/signer"
)

var (
	chainID = big.NewInt(8453)
	target  = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
)

func newSigner(t *testing.T) *signer.Service {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return signer.NewService(key)
}

func baseRequest() *signer.SignEVMRequest {
	return &signer.SignEVMRequest{
		ChainID:              chainID,
		To:                   target,
		GasLimit:             21000,
		MaxFeePerGas:         big.NewInt(2_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000),
		Nonce:                4,
		Data:                 []byte{0x01},
	}
}

func TestSignEIP1559Transaction(t *testing.T) {
	s := newSigner(t)

	resp, err := s.SignEVMTransaction(t.Context(), baseRequest())
	require.NoError(t, err)

	tx := resp.Transaction
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, tx.Hash(), resp.TxHash)
	assert.Equal(t, uint64(4), tx.Nonce())
	assert.Equal(t, "0", tx.Value().String())

	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(resp.RawTransaction))
	assert.Equal(t, resp.TxHash, decoded.Hash())
}

func TestSignSetCodeTransaction(t *testing.T) {
	s := newSigner(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	auth, err := delegate.NewKey(key).SignAuthorization(chainID, common.HexToAddress("0xc0de"), 0)
	require.NoError(t, err)

	req := baseRequest()
	req.AuthorizationList = []types.SetCodeAuthorization{auth}

	resp, err := s.SignEVMTransaction(t.Context(), req)
	require.NoError(t, err)

	tx := resp.Transaction
	assert.Equal(t, uint8(types.SetCodeTxType), tx.Type())
	require.Len(t, tx.SetCodeAuthorizations(), 1)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)
}

func TestSignRejectsForeignFrom(t *testing.T) {
	s := newSigner(t)

	other := common.HexToAddress("0x01")
	req := baseRequest()
	req.FromAddress = &other

	_, err := s.SignEVMTransaction(t.Context(), req)
	assert.Error(t, err)

	req = baseRequest()
	req.ChainID = nil
	_, err = s.SignEVMTransaction(t.Context(), req)
	assert.Error(t, err)
}

func TestNewServiceFromHex(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	s, err := signer.NewServiceFromHex(hexutil.Encode(crypto.FromECDSA(key)))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	_, err = signer.NewServiceFromHex("nope")
	assert.Error(t, err)
}

type fakeBackend struct {
	sent      []*types.Transaction
	estimated int
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return chainID, nil }

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 9, nil
}

func (f *fakeBackend) SuggestFees(context.Context) (*big.Int, *big.Int, error) {
	return big.NewInt(300), big.NewInt(100), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	f.estimated++
	return 60_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func TestLocalWalletChains(t *testing.T) {
	ctx := t.Context()
	w, err := signer.NewLocalWallet(ctx, newSigner(t), &fakeBackend{})
	require.NoError(t, err)
	assert.Equal(t, int64(8453), w.ChainID())

	require.NoError(t, w.SwitchChain(ctx, 8453))

	err = w.SwitchChain(ctx, 84532)
	require.Error(t, err)
	assert.Equal(t, txerr.CodeUnrecognizedChain, txerr.ErrorCode(err))

	sepolia := chain.Chain{ChainID: 84532, Name: "Base Sepolia", RPCURLs: []string{"https://sepolia.base.org"}}
	require.NoError(t, w.AddChain(ctx, sepolia.AddChainParams()))
	require.NoError(t, w.SwitchChain(ctx, 84532))
	assert.Equal(t, int64(84532), w.ChainID())

	_, err = w.SendTransaction(ctx, ethereum.CallMsg{To: &target})
	assert.Error(t, err)
}

func TestLocalWalletSendTransaction(t *testing.T) {
	ctx := t.Context()
	backend := &fakeBackend{}
	s := newSigner(t)

	w, err := signer.NewLocalWallet(ctx, s, backend)
	require.NoError(t, err)

	hash, err := w.SendTransaction(ctx, ethereum.CallMsg{To: &target, Data: []byte{0xaa}})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, 1, backend.estimated)

	tx := backend.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint64(9), tx.Nonce())
	assert.Equal(t, uint64(60_000), tx.Gas())
	assert.Equal(t, "300", tx.GasFeeCap().String())
	assert.Equal(t, "100", tx.GasTipCap().String())

	_, err = w.SendTransaction(ctx, ethereum.CallMsg{To: &target, Gas: 70_000})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.estimated)
	assert.Equal(t, uint64(70_000), backend.sent[1].Gas())
}
