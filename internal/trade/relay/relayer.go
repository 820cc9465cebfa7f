package relay

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/trade/userop"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/delegate"
)

// ErrWaitTimeout is returned when the relay did not report an execution hash in time.
var ErrWaitTimeout = txerr.New(txerr.KindTimeout, "wait for execution hash", errors.New("relay did not execute the operation in time"))

// ErrNoImplementation is returned when the delegate needs an authorization but no account
// implementation is configured. Authorizing the zero address clears the account code.
var ErrNoImplementation = txerr.New(txerr.KindValidation, "authorize delegate", errors.New("no account implementation configured"))

// DelegateAccount is the delegate key together with its persisted authorization flag.
type DelegateAccount interface {
	Lease() (*delegate.Key, func(), error)
	IsDelegated(ctx context.Context) (bool, error)
	MarkDelegated(ctx context.Context) error
}

// NonceReader reads the entry point nonce of a sender.
type NonceReader interface {
	GetNonce(ctx context.Context, sender common.Address, key *big.Int) (*big.Int, error)
}

// ChainReader is the node state the relayer needs.
type ChainReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestFees(ctx context.Context) (*big.Int, *big.Int, error)
}

type RelayerConfig struct {
	ChainID    *big.Int
	EntryPoint common.Address
	// Implementation is the smart account code the delegate EOA is authorized to.
	Implementation common.Address
	// Beneficiary receives the entry point's gas refund.
	Beneficiary common.Address
	WaitTimeout time.Duration
	Retry       txerr.RetryConfig
}

// Relayer turns a delegate trade into a signed user operation and drives it through a Backend.
// It is shared by all providers.
type Relayer struct {
	cfg        RelayerConfig
	account    DelegateAccount
	entryPoint NonceReader
	chain      ChainReader
	builder    *userop.Builder
	metrics    *metrics.Service
}

func NewRelayer(cfg RelayerConfig, account DelegateAccount, entryPoint NonceReader, chain ChainReader, builder *userop.Builder, m *metrics.Service) *Relayer {
	return &Relayer{
		cfg:        cfg,
		account:    account,
		entryPoint: entryPoint,
		chain:      chain,
		builder:    builder,
		metrics:    m,
	}
}

// Relay executes params through backend on behalf of the delegate.
func (r *Relayer) Relay(ctx context.Context, provider string, backend Backend, params TradeParams) (*Result, error) {
	start := time.Now()

	res, err := r.relay(ctx, provider, backend, params)
	r.metrics.ObserveRelay(provider, time.Since(start), res != nil && res.Authorized, err)
	if err != nil {
		return nil, txerr.RewriteInsufficientBalance(err)
	}

	return res, nil
}

func (r *Relayer) relay(ctx context.Context, provider string, backend Backend, params TradeParams) (*Result, error) {
	log := util.LogFromContext(ctx).With().Str("provider", provider).Logger()

	key, release, err := r.account.Lease()
	if err != nil {
		return nil, txerr.Signing("load delegate key", err)
	}
	defer release()
	sender := key.Address()

	// never cached, concurrent trades would collide on a stale nonce
	var nonce *big.Int
	err = txerr.Retry(ctx, r.cfg.Retry, func(ctx context.Context) (err error) {
		nonce, err = r.entryPoint.GetNonce(ctx, sender, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read entry point nonce")
	}

	var maxFee, tip *big.Int
	err = txerr.Retry(ctx, r.cfg.Retry, func(ctx context.Context) (err error) {
		maxFee, tip, err = r.chain.SuggestFees(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest fees")
	}

	op, err := r.builder.Build(sender, nonce, params.To, params.Value, params.Data, userop.Fees{
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
	})
	if err != nil {
		return nil, err
	}

	opHash, err := userop.Sign(op, r.cfg.EntryPoint, r.cfg.ChainID, key)
	if err != nil {
		return nil, txerr.Signing("sign user operation", err)
	}

	callData, err := userop.EncodeHandleOps(op, r.cfg.Beneficiary)
	if err != nil {
		return nil, err
	}

	req := &SubmitRequest{
		ChainID:  r.cfg.ChainID,
		Target:   r.cfg.EntryPoint,
		Data:     callData,
		Value:    new(big.Int),
		GasLimit: userop.CalculateRelayGasLimit(op),
	}

	delegated, err := r.account.IsDelegated(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read delegation flag")
	}

	if !delegated || params.ForceAuthorization {
		auth, err := r.authorize(ctx, key)
		if err != nil {
			return nil, err
		}
		req.AuthorizationList = []Authorization{auth}
	} else {
		req.TransactionType = TransactionTypeEIP1559
	}

	log.Debug().
		Str("sender", sender.Hex()).
		Str("nonce", nonce.String()).
		Str("user_op_hash", opHash.Hex()).
		Bool("authorization", len(req.AuthorizationList) > 0).
		Msg("Submitting user operation")

	taskID, err := backend.Submit(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "relay submission failed")
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.cfg.WaitTimeout)
	defer cancel()

	txHash, err := backend.WaitForExecutionHash(waitCtx, taskID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, errors.Wrapf(ErrWaitTimeout, "task %s after %s", taskID, r.cfg.WaitTimeout)
		}
		return nil, errors.Wrapf(err, "relay task %s failed", taskID)
	}

	if len(req.AuthorizationList) > 0 {
		if err := r.account.MarkDelegated(ctx); err != nil {
			// the authorization is on chain, a later trade re-sends it at worst
			log.Warn().Err(err).Msg("Failed to persist delegation flag")
		}
	}

	log.Info().Str("task_id", taskID).Str("tx_hash", txHash.Hex()).Msg("User operation relayed")

	return &Result{
		TxHash:     txHash,
		TaskID:     taskID,
		UserOpHash: opHash,
		Provider:   provider,
		Authorized: len(req.AuthorizationList) > 0,
		Metadata: map[string]string{
			"nonce":    nonce.String(),
			"gasLimit": strconv.FormatUint(req.GasLimit, 10),
		},
	}, nil
}

func (r *Relayer) authorize(ctx context.Context, key *delegate.Key) (Authorization, error) {
	if r.cfg.Implementation == (common.Address{}) {
		return Authorization{}, ErrNoImplementation
	}

	var accountNonce uint64
	err := txerr.Retry(ctx, r.cfg.Retry, func(ctx context.Context) (err error) {
		accountNonce, err = r.chain.PendingNonceAt(ctx, key.Address())
		return err
	})
	if err != nil {
		return Authorization{}, errors.Wrap(err, "failed to read delegate account nonce")
	}

	auth, err := key.SignAuthorization(r.cfg.ChainID, r.cfg.Implementation, accountNonce)
	if err != nil {
		return Authorization{}, txerr.Signing("sign authorization", err)
	}

	return NewAuthorization(auth), nil
}
