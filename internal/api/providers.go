package api

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/trade"
	"github/chapool/go-trader/internal/trade/confirm"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/trade/positions"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/trade/relay/selfrelay"
	"github/chapool/go-trader/internal/trade/relay/sponsored"
	"github/chapool/go-trader/internal/trade/setup"
	"github/chapool/go-trader/internal/trade/userop"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/wallet/chain"
	"github/chapool/go-trader/internal/wallet/delegate"
	"github/chapool/go-trader/internal/wallet/keystore"
	"github/chapool/go-trader/internal/wallet/node"
	"github/chapool/go-trader/internal/wallet/signer"
)

// StoreDriverMemory keeps delegate state in memory only, used by tests and dry runs.
const StoreDriverMemory = "memory"

func NewNode(cfg config.Engine) (*node.Client, error) {
	return node.Dial(chain.ParseRPCURLs(cfg.Chain.RPCURL), cfg.Chain.RequestsPerSecond)
}

//nolint:ireturn
func NewDelegateStore(ctx context.Context, cfg config.Engine) (delegate.Store, error) {
	if cfg.Delegate.StoreDriver == StoreDriverMemory {
		return delegate.NewMemoryStore(), nil
	}

	return delegate.OpenSQLStore(ctx, cfg.Delegate.StoreDriver, cfg.Delegate.StoreDSN)
}

//nolint:ireturn
func NewKeystore(cfg config.Engine) keystore.Service {
	if cfg.Delegate.LightKDF {
		return keystore.NewService(keystore.LightScryptParams())
	}

	return keystore.NewService(nil)
}

// NewDelegateManager returns the delegate manager, unlocked if a password is configured.
func NewDelegateManager(ctx context.Context, cfg config.Engine, store delegate.Store, ks keystore.Service) (*delegate.Manager, error) {
	m := delegate.NewManager(store, ks)

	if cfg.Delegate.Password == "" {
		log.Warn().Msg("No delegate password configured, delegate key stays locked")
		return m, nil
	}

	if _, err := m.Unlock(ctx, cfg.Delegate.Password); err != nil {
		return nil, errors.Wrap(err, "failed to unlock delegate key")
	}

	return m, nil
}

func NewEncoder(cfg config.Engine) *encoder.Encoder {
	return encoder.New(encoder.Config{
		ChainID:                cfg.Chain.ChainID,
		Trading:                cfg.Contracts.Trading,
		TradingStorage:         cfg.Contracts.TradingStorage,
		USDC:                   cfg.Contracts.USDC,
		Multicall:              cfg.Contracts.Multicall,
		MinPositionUSD:         cfg.Trading.MinPositionUSD,
		LongTPMultiplier:       cfg.Trading.LongTPMultiplier,
		ShortTPMultiplier:      cfg.Trading.ShortTPMultiplier,
		DefaultSlippagePercent: cfg.Trading.DefaultSlippagePercent,
		ApprovalCapUSDC:        cfg.Trading.ApprovalCapUSDC,
	})
}

func NewChainRegistry(cfg config.Engine) (*chain.Registry, error) {
	return chain.RegistryFromConfig(cfg.Chain)
}

// NewRelayer builds the shared relay sequence. The entry point refund goes to the configured
// beneficiary, falling back to the self relay key.
func NewRelayer(cfg config.Engine, manager *delegate.Manager, nodeClient *node.Client, m *metrics.Service) (*relay.Relayer, error) {
	beneficiary := cfg.Relay.Self.Beneficiary
	if beneficiary == (common.Address{}) && cfg.Relay.Self.PrivateKey != "" {
		s, err := signer.NewServiceFromHex(cfg.Relay.Self.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid self relay key")
		}
		beneficiary = s.Address()
	}

	return relay.NewRelayer(relay.RelayerConfig{
		ChainID:        big.NewInt(cfg.Chain.ChainID),
		EntryPoint:     cfg.Contracts.EntryPoint,
		Implementation: cfg.Contracts.AccountImplementation,
		Beneficiary:    beneficiary,
		WaitTimeout:    cfg.Relay.WaitTimeout,
		Retry:          txerr.DefaultRetryConfig(),
	},
		manager,
		userop.NewEntryPoint(cfg.Contracts.EntryPoint, nodeClient),
		nodeClient,
		userop.NewBuilder(userop.GasLimits{
			CallGasLimit:         cfg.UserOp.CallGasLimit,
			VerificationGasLimit: cfg.UserOp.VerificationGasLimit,
			PreVerificationGas:   cfg.UserOp.PreVerificationGas,
		}),
		m,
	), nil
}

// NewRelayService registers all providers and selects the configured one when it is usable.
func NewRelayService(ctx context.Context, cfg config.Engine, relayer *relay.Relayer, nodeClient *node.Client) (*relay.Service, error) {
	svc := relay.NewService()

	if err := svc.Register(sponsored.NewProvider(cfg.Relay.Sponsored, relayer)); err != nil {
		return nil, err
	}

	self, err := selfrelay.NewProvider(cfg.Relay.Self, relayer, nodeClient)
	if err != nil {
		return nil, err
	}
	if err := svc.Register(self); err != nil {
		return nil, err
	}

	if cfg.Relay.Provider != "" {
		if err := svc.Use(ctx, cfg.Relay.Provider); err != nil {
			log.Warn().Err(err).Str("provider", cfg.Relay.Provider).Msg("Configured relay provider unavailable")
		}
	}

	return svc, nil
}

//nolint:ireturn
func NewEventSource(cfg config.Engine) confirm.EventSource {
	if cfg.Confirm.PushURL == "" {
		return nil
	}

	return confirm.NewWebsocketSource(cfg.Confirm.PushURL)
}

// NewTracker returns the confirmation tracker, subscribed to push events of the delegate.
func NewTracker(ctx context.Context, cfg config.Engine, nodeClient *node.Client, events confirm.EventSource, manager *delegate.Manager, m *metrics.Service) *confirm.Tracker {
	account, err := manager.Address(ctx)
	if err != nil && !errors.Is(err, delegate.ErrNotFound) {
		log.Warn().Err(err).Msg("Failed to read delegate address, push confirmations disabled")
	}

	return confirm.NewTracker(confirm.Config{
		PollInterval: cfg.Confirm.PollInterval,
		Timeout:      cfg.Confirm.Timeout,
		Account:      account,
	}, nodeClient, events, m)
}

// NewLocalWallet returns the trader wallet used to sign the setup, nil if no key is configured.
func NewLocalWallet(ctx context.Context, cfg config.Engine, nodeClient *node.Client) (*signer.LocalWallet, error) {
	if cfg.Wallet.PrivateKey == "" {
		return nil, nil
	}

	s, err := signer.NewServiceFromHex(cfg.Wallet.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid wallet key")
	}

	return signer.NewLocalWallet(ctx, s, nodeClient)
}

func NewSetupService(
	cfg config.Engine,
	enc *encoder.Encoder,
	chains *chain.Registry,
	nodeClient *node.Client,
	manager *delegate.Manager,
	wallet *signer.LocalWallet,
	tracker *confirm.Tracker,
	m *metrics.Service,
) *setup.Service {
	var w setup.Wallet
	if wallet != nil {
		w = wallet
	}

	return setup.NewService(setup.Config{
		ChainID:           cfg.Chain.ChainID,
		FallbackGasLimit:  cfg.Setup.FallbackGasLimit,
		MulticallOverhead: cfg.Setup.MulticallOverhead,
		MinAllowanceUSDC:  cfg.Trading.MinAllowanceUSDC,
	}, enc, chains, nodeClient, manager, w, tracker, m)
}

func NewPositions(cfg config.Engine, enc *encoder.Encoder, nodeClient *node.Client) *positions.Service {
	return positions.NewService(positions.Config{
		PairCount:        cfg.Trading.PairCount,
		MaxTradesPerPair: cfg.Trading.MaxTradesPerPair,
	}, enc, nodeClient)
}

func NewEngine(cfg config.Engine, enc *encoder.Encoder, relays *relay.Service, tracker *confirm.Tracker, setupService *setup.Service, manager *delegate.Manager) *trade.Engine {
	return trade.NewEngine(trade.Config{
		ExecutionFee: cfg.Trading.ExecutionFeeWei,
	}, enc, relays, tracker, setupService, manager)
}
