package setup

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/chain"
)

// ErrNoWallet is returned by Run when no trader wallet is available to sign the setup.
var ErrNoWallet = errors.New("no wallet configured to sign the setup transaction")

// Service performs the one-time trader setup: register the delegate and approve USDC in one
// user signed multicall.
type Service struct {
	cfg       Config
	encoder   *encoder.Encoder
	registry  *chain.Registry
	chain     Chain
	flags     Flags
	wallet    Wallet
	confirmer Confirmer
	metrics   *metrics.Service
}

// NewService returns a setup service. wallet and confirmer may be nil, Run then fails with
// ErrNoWallet and skips waiting for the receipt respectively.
func NewService(cfg Config, enc *encoder.Encoder, registry *chain.Registry, chain Chain, flags Flags, wallet Wallet, confirmer Confirmer, m *metrics.Service) *Service {
	return &Service{
		cfg:       cfg,
		encoder:   enc,
		registry:  registry,
		chain:     chain,
		flags:     flags,
		wallet:    wallet,
		confirmer: confirmer,
		metrics:   m,
	}
}

func (s *Service) HasWallet() bool {
	return s.wallet != nil
}

// Trader returns the address of the configured wallet.
func (s *Service) Trader() (common.Address, error) {
	if s.wallet == nil {
		return common.Address{}, ErrNoWallet
	}

	return s.wallet.Address(), nil
}

func (s *Service) calls(delegate common.Address) ([]*encoder.EncodedTransaction, error) {
	setDelegate, err := s.encoder.SetDelegate(delegate)
	if err != nil {
		return nil, err
	}

	approve, err := s.encoder.Approve(s.encoder.Config().Trading, decimal.Zero)
	if err != nil {
		return nil, err
	}

	return []*encoder.EncodedTransaction{setDelegate, approve}, nil
}

// BuildSetupTx returns the unsigned multicall registering delegate and approving the capped
// USDC allowance to the Trading contract.
func (s *Service) BuildSetupTx(delegate common.Address) (*encoder.EncodedTransaction, error) {
	calls, err := s.calls(delegate)
	if err != nil {
		return nil, err
	}

	return s.encoder.Multicall(calls...)
}

// Run switches the wallet to the trading chain, sends the setup multicall and marks the
// setup complete. If the result cannot be re-read the flag is still set and Result.Optimistic
// reports it; the next Status call reconciles.
func (s *Service) Run(ctx context.Context, delegate common.Address) (*Result, error) {
	res, err := s.run(ctx, delegate)
	s.metrics.ObserveSetup(res != nil && res.Optimistic, err)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) run(ctx context.Context, delegate common.Address) (*Result, error) {
	if s.wallet == nil {
		return nil, ErrNoWallet
	}

	trader := s.wallet.Address()
	log := util.LogFromContext(ctx).With().
		Str("trader", trader.Hex()).
		Str("delegate", delegate.Hex()).
		Int64("chain_id", s.cfg.ChainID).
		Logger()

	if err := s.ensureChain(ctx); err != nil {
		return nil, err
	}

	calls, err := s.calls(delegate)
	if err != nil {
		return nil, err
	}

	tx, err := s.encoder.Multicall(calls...)
	if err != nil {
		return nil, err
	}

	gasLimit := s.estimateGas(ctx, trader, calls)

	hash, err := s.wallet.SendTransaction(ctx, ethereum.CallMsg{
		From:  trader,
		To:    &tx.To,
		Gas:   gasLimit,
		Value: tx.ValueInt(),
		Data:  tx.Data,
	})
	if err != nil {
		if txerr.IsUserRejection(err) {
			return nil, txerr.Signing("send setup transaction", err)
		}
		return nil, errors.Wrap(err, "failed to send setup transaction")
	}

	log.Info().Str("tx_hash", hash.Hex()).Uint64("gas_limit", gasLimit).Msg("Setup transaction sent")

	if s.confirmer != nil {
		if _, err := s.confirmer.Await(ctx, hash); err != nil {
			if txerr.Is(err, txerr.KindProtocolRevert) {
				return nil, errors.Wrap(err, "setup transaction reverted")
			}
			log.Warn().Err(err).Str("tx_hash", hash.Hex()).Msg("Setup transaction not confirmed yet")
		}
	}

	res := &Result{TxHash: hash, GasLimit: gasLimit}

	status, err := s.read(ctx, trader, delegate)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Failed to re-check setup, marking complete optimistically")
		res.Optimistic = true
	case !status.Complete:
		log.Warn().
			Bool("delegate_set", status.IsDelegateSet).
			Str("allowance", status.Allowance.String()).
			Msg("Setup not visible on chain yet, marking complete optimistically")
		res.Optimistic = true
		res.Status = status
	default:
		res.Status = status
	}

	if err := s.flags.SetSetupComplete(ctx, trader, true); err != nil {
		log.Error().Err(err).Msg("Failed to persist setup flag")
	} else if res.Status != nil {
		res.Status.Persisted = true
	}

	return res, nil
}

func (s *Service) ensureChain(ctx context.Context) error {
	err := s.wallet.SwitchChain(ctx, s.cfg.ChainID)
	if err == nil {
		return nil
	}

	if txerr.ErrorCode(err) != txerr.CodeUnrecognizedChain {
		if txerr.IsUserRejection(err) {
			return txerr.Signing("switch chain", err)
		}
		return errors.Wrapf(err, "failed to switch to chain %d", s.cfg.ChainID)
	}

	c, err := s.registry.GetChain(s.cfg.ChainID)
	if err != nil {
		return err
	}

	util.LogFromContext(ctx).Info().Int64("chain_id", c.ChainID).Str("name", c.Name).Msg("Adding chain to wallet")

	if err := s.wallet.AddChain(ctx, c.AddChainParams()); err != nil {
		if txerr.IsUserRejection(err) {
			return txerr.Signing("add chain", err)
		}
		return errors.Wrapf(err, "failed to add chain %d", c.ChainID)
	}

	if err := s.wallet.SwitchChain(ctx, s.cfg.ChainID); err != nil {
		return errors.Wrapf(err, "failed to switch to chain %d after adding it", s.cfg.ChainID)
	}

	return nil
}

// estimateGas sums per call estimates. A failed estimate never blocks submission.
func (s *Service) estimateGas(ctx context.Context, from common.Address, calls []*encoder.EncodedTransaction) uint64 {
	total := s.cfg.MulticallOverhead

	for _, call := range calls {
		to := call.To
		gas, err := s.chain.EstimateGas(ctx, ethereum.CallMsg{
			From: from,
			To:   &to,
			Data: call.Data,
		})
		if err != nil || gas == 0 {
			util.LogFromContext(ctx).Debug().Err(err).Str("to", to.Hex()).Msg("Gas estimation failed, using fallback")
			gas = s.cfg.FallbackGasLimit
		}
		total += gas
	}

	return total
}

// Status reads the on-chain setup state and reconciles the persisted flag with it.
func (s *Service) Status(ctx context.Context, trader, delegate common.Address) (*Status, error) {
	status, err := s.read(ctx, trader, delegate)
	if err != nil {
		return nil, err
	}

	persisted, err := s.flags.IsSetupComplete(ctx, trader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read setup flag")
	}
	status.Persisted = persisted

	if persisted != status.Complete {
		if err := s.flags.SetSetupComplete(ctx, trader, status.Complete); err != nil {
			return nil, errors.Wrap(err, "failed to reconcile setup flag")
		}
		status.Reconciled = true

		util.LogFromContext(ctx).Info().
			Str("trader", trader.Hex()).
			Bool("complete", status.Complete).
			Msg("Reconciled setup flag with chain state")
	}

	return status, nil
}

func (s *Service) read(ctx context.Context, trader, delegate common.Address) (*Status, error) {
	delegateOf, err := s.DelegateOf(ctx, trader)
	if err != nil {
		return nil, err
	}

	allowance, err := s.Allowance(ctx, trader)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Trader:        trader,
		Delegate:      delegate,
		DelegateOf:    delegateOf,
		IsDelegateSet: delegate != (common.Address{}) && delegateOf == delegate,
		Allowance:     allowance,
		HasAllowance:  allowance.GreaterThanOrEqual(s.cfg.MinAllowanceUSDC),
	}
	status.Complete = status.IsDelegateSet && status.HasAllowance

	return status, nil
}

// DelegateOf reads the delegate the Trading contract has registered for trader.
func (s *Service) DelegateOf(ctx context.Context, trader common.Address) (common.Address, error) {
	data, err := s.encoder.DelegateOfCall(trader)
	if err != nil {
		return common.Address{}, err
	}

	trading := s.encoder.Config().Trading
	out, err := s.chain.CallContract(ctx, ethereum.CallMsg{To: &trading, Data: data}, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to read delegate")
	}

	return encoder.DecodeDelegateOf(out)
}

// Allowance returns the USDC amount trader has approved to the Trading contract.
func (s *Service) Allowance(ctx context.Context, trader common.Address) (decimal.Decimal, error) {
	cfg := s.encoder.Config()

	data, err := s.encoder.AllowanceCall(trader, cfg.Trading)
	if err != nil {
		return decimal.Zero, err
	}

	out, err := s.chain.CallContract(ctx, ethereum.CallMsg{To: &cfg.USDC, Data: data}, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read allowance")
	}

	amount, err := encoder.DecodeUint256(out)
	if err != nil {
		return decimal.Zero, err
	}

	return encoder.UnscaleUSDC(amount), nil
}

// Balance returns the USDC balance of trader.
func (s *Service) Balance(ctx context.Context, trader common.Address) (decimal.Decimal, error) {
	data, err := s.encoder.BalanceOfCall(trader)
	if err != nil {
		return decimal.Zero, err
	}

	usdc := s.encoder.Config().USDC
	out, err := s.chain.CallContract(ctx, ethereum.CallMsg{To: &usdc, Data: data}, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to read balance")
	}

	amount, err := encoder.DecodeUint256(out)
	if err != nil {
		return decimal.Zero, err
	}

	return encoder.UnscaleUSDC(amount), nil
}
