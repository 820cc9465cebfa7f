package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidConfig wraps every config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

func durationPositive(d time.Duration, key string) vala.Checker {
	return func() (bool, string) {
		return d > 0, fmt.Sprintf("%s must be > 0, got %s", key, d)
	}
}

func intPositive(n int64, key string) vala.Checker {
	return func() (bool, string) {
		return n > 0, fmt.Sprintf("%s must be > 0, got %d", key, n)
	}
}

func contractSet(a common.Address, key string) vala.Checker {
	return func() (bool, string) {
		return a != (common.Address{}), fmt.Sprintf("%s must be a non-zero address", key)
	}
}

func decimalPositive(d decimal.Decimal, key string) vala.Checker {
	return func() (bool, string) {
		return d.IsPositive(), fmt.Sprintf("%s must be > 0", key)
	}
}

// Validate checks the values the engine cannot run without. The account implementation is
// not required here: it is only needed once a trade has to authorize the delegate.
func (e Engine) Validate() error {
	err := vala.BeginValidation().Validate(
		intPositive(e.Chain.ChainID, "chain.id"),
		func() (bool, string) { return e.Chain.RPCURL != "", "chain.rpc_url is required" },
		contractSet(e.Contracts.Trading, "contracts.trading"),
		contractSet(e.Contracts.TradingStorage, "contracts.trading_storage"),
		contractSet(e.Contracts.USDC, "contracts.usdc"),
		contractSet(e.Contracts.EntryPoint, "contracts.entry_point"),
		contractSet(e.Contracts.Multicall, "contracts.multicall"),
		decimalPositive(e.Trading.MinPositionUSD, "trading.min_position_usd"),
		decimalPositive(e.Trading.ApprovalCapUSDC, "trading.approval_cap_usdc"),
		intPositive(e.Trading.PairCount, "trading.pair_count"),
		intPositive(e.Trading.MaxTradesPerPair, "trading.max_trades_per_pair"),
		durationPositive(e.Relay.WaitTimeout, "relay.wait_timeout"),
		durationPositive(e.Confirm.PollInterval, "confirm.poll_interval"),
		durationPositive(e.Confirm.Timeout, "confirm.timeout"),
	).Check()
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}
