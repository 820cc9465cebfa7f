package trade

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/trade/confirm"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/trade/setup"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
)

// ErrSetupRequired is returned when the trader has not completed the one-time setup and no
// wallet is available to run it.
var ErrSetupRequired = txerr.New(txerr.KindValidation, "ensure setup", errors.New("one-time delegate setup required"))

// ErrStillPending is returned when a relayed trade was not confirmed in time. Confirmation
// continues in the background.
var ErrStillPending = errors.New("still pending, reconciling in background")

// Relayer submits a delegate trade through the current provider.
type Relayer interface {
	RelayTrade(ctx context.Context, params relay.TradeParams) (*relay.Result, error)
}

// Confirmer resolves the terminal state of a transaction.
type Confirmer interface {
	Await(ctx context.Context, hash common.Hash) (confirm.Session, error)
}

// SetupRunner runs and inspects the one-time trader setup.
type SetupRunner interface {
	HasWallet() bool
	Trader() (common.Address, error)
	Status(ctx context.Context, trader, delegate common.Address) (*setup.Status, error)
	Run(ctx context.Context, delegate common.Address) (*setup.Result, error)
}

// DelegateAccount exposes the delegate address and the persisted setup flag.
type DelegateAccount interface {
	Address(ctx context.Context) (common.Address, error)
	IsSetupComplete(ctx context.Context, trader common.Address) (bool, error)
}

type Config struct {
	// ExecutionFee is forwarded as value with every trade.
	ExecutionFee *big.Int
}

// Outcome is the result of a trade that reached a terminal confirmation stage.
type Outcome struct {
	TxHash  common.Hash     `json:"txHash"`
	Relay   *relay.Result   `json:"relay"`
	Session confirm.Session `json:"session"`
}

// Engine drives a trade from intent to confirmation: validate, encode, ensure setup, relay and
// confirm.
type Engine struct {
	cfg      Config
	encoder  *encoder.Encoder
	relayer  Relayer
	confirm  Confirmer
	setup    SetupRunner
	delegate DelegateAccount
}

func NewEngine(cfg Config, enc *encoder.Encoder, relayer Relayer, confirmer Confirmer, setupRunner SetupRunner, account DelegateAccount) *Engine {
	return &Engine{
		cfg:      cfg,
		encoder:  enc,
		relayer:  relayer,
		confirm:  confirmer,
		setup:    setupRunner,
		delegate: account,
	}
}

func (e *Engine) executionFee() *big.Int {
	if e.cfg.ExecutionFee == nil {
		return new(big.Int)
	}

	return e.cfg.ExecutionFee
}

// OpenTrade opens a market position.
func (e *Engine) OpenTrade(ctx context.Context, intent encoder.TradeIntent) (*Outcome, error) {
	tx, err := e.encoder.OpenTrade(intent, e.executionFee())
	if err != nil {
		return nil, err
	}

	return e.execute(ctx, "open", intent.Trader, tx)
}

// CloseTrade closes (part of) an open position.
func (e *Engine) CloseTrade(ctx context.Context, req encoder.CloseRequest) (*Outcome, error) {
	tx, err := e.encoder.CloseTrade(req, e.executionFee())
	if err != nil {
		return nil, err
	}

	return e.execute(ctx, "close", req.Trader, tx)
}

func (e *Engine) UpdateTpSl(ctx context.Context, req encoder.TpSlRequest) (*Outcome, error) {
	tx, err := e.encoder.UpdateTpSl(req, e.executionFee())
	if err != nil {
		return nil, err
	}

	return e.execute(ctx, "update_tpsl", req.Trader, tx)
}

func (e *Engine) execute(ctx context.Context, action string, trader common.Address, tx *encoder.EncodedTransaction) (*Outcome, error) {
	log := util.LogFromContext(ctx).With().Str("action", action).Str("trader", trader.Hex()).Logger()
	ctx = log.WithContext(ctx)

	if err := e.EnsureSetup(ctx, trader); err != nil {
		return nil, err
	}

	res, err := e.relayer.RelayTrade(ctx, relay.TradeParams{
		To:    tx.To,
		Data:  tx.Data,
		Value: tx.ValueInt(),
	})
	if err != nil {
		return nil, err
	}

	out := &Outcome{TxHash: res.TxHash, Relay: res}

	session, err := e.confirm.Await(ctx, res.TxHash)
	out.Session = session
	if err != nil {
		if txerr.Is(err, txerr.KindConfirmationTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Err(err).Str("tx_hash", res.TxHash.Hex()).Msg("Trade not confirmed in time")
			return out, txerr.New(txerr.KindConfirmationTimeout, "confirm "+res.TxHash.Hex(), errors.WithMessage(ErrStillPending, err.Error()))
		}
		return out, err
	}

	log.Info().Str("tx_hash", res.TxHash.Hex()).Str("stage", string(session.Stage)).Msg("Trade confirmed")

	return out, nil
}

// EnsureSetup makes sure trader registered the delegate and approved USDC. A missing flag is
// first reconciled with chain state, then the setup is run if a wallet for trader is available.
func (e *Engine) EnsureSetup(ctx context.Context, trader common.Address) error {
	complete, err := e.delegate.IsSetupComplete(ctx, trader)
	if err != nil {
		return errors.Wrap(err, "failed to read setup flag")
	}
	if complete {
		return nil
	}

	delegateAddr, err := e.delegate.Address(ctx)
	if err != nil {
		return txerr.Signing("load delegate address", err)
	}

	status, err := e.setup.Status(ctx, trader, delegateAddr)
	if err != nil {
		util.LogFromContext(ctx).Debug().Err(err).Msg("Failed to read setup status")
	} else if status.Complete {
		return nil
	}

	if !e.setup.HasWallet() {
		return ErrSetupRequired
	}

	walletAddr, err := e.setup.Trader()
	if err != nil {
		return err
	}
	if walletAddr != trader {
		return errors.Wrapf(ErrSetupRequired, "wallet %s cannot set up trader %s", walletAddr.Hex(), trader.Hex())
	}

	res, err := e.setup.Run(ctx, delegateAddr)
	if err != nil {
		return errors.Wrap(err, "setup failed")
	}

	util.LogFromContext(ctx).Info().
		Str("tx_hash", res.TxHash.Hex()).
		Bool("optimistic", res.Optimistic).
		Msg("Setup completed")

	return nil
}

// Confirm waits for an arbitrary transaction hash.
func (e *Engine) Confirm(ctx context.Context, hash common.Hash) (confirm.Session, error) {
	return e.confirm.Await(ctx, hash)
}
