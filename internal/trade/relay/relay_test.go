package relay_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/trade/userop"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/wallet/delegate"
	"github/chapool/go-trader/internal/wallet/keystore"
)

var (
	chainID        = big.NewInt(8453)
	entryPoint     = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	implementation = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	trading        = common.HexToAddress("0x44914408af82bC9983bbb330e3578E1105e11d4e")
)

type fakeNonces struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeNonces) GetNonce(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	return big.NewInt(int64(f.calls)), nil
}

type fakeChain struct{}

func (fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 11, nil }

func (fakeChain) SuggestFees(context.Context) (*big.Int, *big.Int, error) {
	return big.NewInt(2_000_000_000), big.NewInt(1_000_000), nil
}

type fakeBackend struct {
	mu         sync.Mutex
	configured bool
	requests   []*relay.SubmitRequest
	submitErr  error
	waitErr    error
	block      bool
}

func (f *fakeBackend) IsConfigured() bool { return f.configured }

func (f *fakeBackend) Submit(_ context.Context, req *relay.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.requests = append(f.requests, req)

	return "task-1", nil
}

func (f *fakeBackend) WaitForExecutionHash(ctx context.Context, _ string) (common.Hash, error) {
	if f.block {
		<-ctx.Done()
		return common.Hash{}, ctx.Err()
	}
	if f.waitErr != nil {
		return common.Hash{}, f.waitErr
	}

	return common.HexToHash("0xfeed"), nil
}

type fixture struct {
	manager *delegate.Manager
	nonces  *fakeNonces
	backend *fakeBackend
	relayer *relay.Relayer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	manager := delegate.NewManager(delegate.NewMemoryStore(), keystore.NewService(keystore.LightScryptParams()))
	_, err := manager.Unlock(t.Context(), "pw")
	require.NoError(t, err)

	m, err := metrics.New()
	require.NoError(t, err)

	nonces := &fakeNonces{}
	relayer := relay.NewRelayer(relay.RelayerConfig{
		ChainID:        chainID,
		EntryPoint:     entryPoint,
		Implementation: implementation,
		WaitTimeout:    50 * time.Millisecond,
		Retry:          txerr.DefaultRetryConfig(),
	}, manager, nonces, fakeChain{}, userop.NewBuilder(userop.DefaultGasLimits()), m)

	return &fixture{
		manager: manager,
		nonces:  nonces,
		backend: &fakeBackend{configured: true},
		relayer: relayer,
	}
}

func params() relay.TradeParams {
	return relay.TradeParams{To: trading, Data: []byte{0x01, 0x02}, Value: big.NewInt(1000)}
}

func TestRelayAuthorizesOnce(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	key, release, err := f.manager.Lease()
	require.NoError(t, err)
	release()

	res, err := f.relayer.Relay(ctx, "test", f.backend, params())
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xfeed"), res.TxHash)
	assert.Equal(t, "task-1", res.TaskID)
	assert.True(t, res.Authorized)

	first := f.backend.requests[0]
	assert.Equal(t, entryPoint, first.Target)
	assert.Equal(t, uint64(4_200_000), first.GasLimit)
	assert.Empty(t, first.TransactionType)
	require.Len(t, first.AuthorizationList, 1)

	auth := first.AuthorizationList[0].SetCodeAuthorization()
	assert.Equal(t, implementation, auth.Address)
	assert.Equal(t, uint64(11), auth.Nonce)
	assert.Equal(t, uint64(8453), auth.ChainID.Uint64())
	authority, err := auth.Authority()
	require.NoError(t, err)
	assert.Equal(t, key.Address(), authority)

	delegated, err := f.manager.IsDelegated(ctx)
	require.NoError(t, err)
	assert.True(t, delegated)

	// fast path once delegated
	res, err = f.relayer.Relay(ctx, "test", f.backend, params())
	require.NoError(t, err)
	assert.False(t, res.Authorized)
	second := f.backend.requests[1]
	assert.Empty(t, second.AuthorizationList)
	assert.Equal(t, relay.TransactionTypeEIP1559, second.TransactionType)

	forced := params()
	forced.ForceAuthorization = true
	res, err = f.relayer.Relay(ctx, "test", f.backend, forced)
	require.NoError(t, err)
	assert.Len(t, f.backend.requests[2].AuthorizationList, 1)

	// the entry point nonce is read for every trade
	assert.Equal(t, 3, f.nonces.calls)
	assert.Equal(t, "3", res.Metadata["nonce"])
}

func TestRelaySubmitFailure(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	f.backend.submitErr = errors.New("relay rejected request")

	_, err := f.relayer.Relay(ctx, "test", f.backend, params())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay rejected request")

	delegated, err := f.manager.IsDelegated(ctx)
	require.NoError(t, err)
	assert.False(t, delegated)
}

func TestRelayWaitTimeout(t *testing.T) {
	f := newFixture(t)
	f.backend.block = true

	_, err := f.relayer.Relay(t.Context(), "test", f.backend, params())
	require.Error(t, err)
	assert.True(t, errors.Is(err, relay.ErrWaitTimeout))
	assert.True(t, txerr.Is(err, txerr.KindTimeout))

	delegated, err := f.manager.IsDelegated(t.Context())
	require.NoError(t, err)
	assert.False(t, delegated)
}

func TestRelayRewritesInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.backend.waitErr = errors.New("execution reverted: ERC20: transfer amount exceeds balance")

	_, err := f.relayer.Relay(t.Context(), "test", f.backend, params())
	require.Error(t, err)
	assert.True(t, errors.Is(err, txerr.ErrInsufficientBalance))
	assert.Contains(t, err.Error(), "transfer amount exceeds balance")
}

func TestRelayRequiresUnlockedKey(t *testing.T) {
	manager := delegate.NewManager(delegate.NewMemoryStore(), keystore.NewService(keystore.LightScryptParams()))
	relayer := relay.NewRelayer(relay.RelayerConfig{ChainID: chainID, EntryPoint: entryPoint, WaitTimeout: time.Second},
		manager, &fakeNonces{}, fakeChain{}, userop.NewBuilder(userop.DefaultGasLimits()), nil)

	_, err := relayer.Relay(t.Context(), "test", &fakeBackend{configured: true}, params())
	require.Error(t, err)
	assert.True(t, txerr.Is(err, txerr.KindSigning))
}

func TestRelayWithoutImplementationRefusesAuthorization(t *testing.T) {
	ctx := t.Context()
	manager := delegate.NewManager(delegate.NewMemoryStore(), keystore.NewService(keystore.LightScryptParams()))
	_, err := manager.Unlock(ctx, "pw")
	require.NoError(t, err)

	relayer := relay.NewRelayer(relay.RelayerConfig{
		ChainID:     chainID,
		EntryPoint:  entryPoint,
		WaitTimeout: time.Second,
		Retry:       txerr.DefaultRetryConfig(),
	}, manager, &fakeNonces{}, fakeChain{}, userop.NewBuilder(userop.DefaultGasLimits()), nil)
	backend := &fakeBackend{configured: true}

	_, err = relayer.Relay(ctx, "test", backend, params())
	require.ErrorIs(t, err, relay.ErrNoImplementation)
	assert.True(t, txerr.Is(err, txerr.KindValidation))
	assert.Empty(t, backend.requests)

	delegated, err := manager.IsDelegated(ctx)
	require.NoError(t, err)
	assert.False(t, delegated)

	// an already delegated account keeps trading on the fast path
	require.NoError(t, manager.MarkDelegated(ctx))
	res, err := relayer.Relay(ctx, "test", backend, params())
	require.NoError(t, err)
	assert.False(t, res.Authorized)

	forced := params()
	forced.ForceAuthorization = true
	_, err = relayer.Relay(ctx, "test", backend, forced)
	require.ErrorIs(t, err, relay.ErrNoImplementation)
	assert.Len(t, backend.requests, 1)
}

func TestService(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	svc := relay.NewService()
	_, err := svc.Current()
	assert.ErrorIs(t, err, relay.ErrNoProvider)

	require.NoError(t, svc.Register(relay.NewProvider("offline", f.relayer, &fakeBackend{})))
	require.NoError(t, svc.Register(relay.NewProvider("sponsored", f.relayer, f.backend)))
	assert.Error(t, svc.Register(relay.NewProvider("sponsored", f.relayer, f.backend)))

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "sponsored", current.Name())

	assert.ErrorIs(t, svc.Use(ctx, "offline"), relay.ErrNotConfigured)
	assert.ErrorIs(t, svc.Use(ctx, "missing"), relay.ErrUnknownProvider)
	require.NoError(t, svc.Use(ctx, "sponsored"))

	assert.Equal(t, []relay.ProviderStatus{
		{Name: "offline", Configured: false, Current: false},
		{Name: "sponsored", Configured: true, Current: true},
	}, svc.Providers())

	res, err := svc.RelayTrade(ctx, params())
	require.NoError(t, err)
	assert.Equal(t, "sponsored", res.Provider)
}
