package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/encoder"
)

// Leverage window of the zero-fee market orders the API builds.
const (
	MinLeverage = 75
	MaxLeverage = 250
)

type PostBuildOpenPayload struct {
	Trader          common.Address   `json:"trader"`
	PairIndex       *int64           `json:"pair_index"`
	Leverage        decimal.Decimal  `json:"leverage"`
	IsLong          *bool            `json:"is_long"`
	Collateral      decimal.Decimal  `json:"collateral"`
	OpenPrice       decimal.Decimal  `json:"open_price"`
	TakeProfit      *decimal.Decimal `json:"take_profit,omitempty"`
	StopLoss        *decimal.Decimal `json:"stop_loss,omitempty"`
	SlippagePercent *decimal.Decimal `json:"slippage_percent,omitempty"`
}

func (p *PostBuildOpenPayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
		present(p.PairIndex, "pair_index"),
		notNegativeIndex(p.PairIndex, "pair_index"),
		present(p.IsLong, "is_long"),
		between(p.Leverage, MinLeverage, MaxLeverage, "leverage"),
		positive(p.Collateral, "collateral"),
		positive(p.OpenPrice, "open_price"),
		notNegative(p.TakeProfit, "take_profit"),
		notNegative(p.StopLoss, "stop_loss"),
		notNegative(p.SlippagePercent, "slippage_percent"),
	).Check()
}

func (p *PostBuildOpenPayload) Intent() encoder.TradeIntent {
	return encoder.TradeIntent{
		Trader:          p.Trader,
		PairIndex:       int64Value(p.PairIndex),
		Collateral:      p.Collateral,
		Leverage:        p.Leverage,
		IsLong:          p.IsLong != nil && *p.IsLong,
		OpenPrice:       p.OpenPrice,
		TakeProfit:      p.TakeProfit,
		StopLoss:        p.StopLoss,
		SlippagePercent: p.SlippagePercent,
	}
}

type PostBuildClosePayload struct {
	Trader            common.Address  `json:"trader"`
	PairIndex         *int64          `json:"pair_index"`
	TradeIndex        *int64          `json:"trade_index"`
	CollateralToClose decimal.Decimal `json:"collateral_to_close"`
}

func (p *PostBuildClosePayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
		present(p.PairIndex, "pair_index"),
		notNegativeIndex(p.PairIndex, "pair_index"),
		present(p.TradeIndex, "trade_index"),
		notNegativeIndex(p.TradeIndex, "trade_index"),
		positive(p.CollateralToClose, "collateral_to_close"),
	).Check()
}

func (p *PostBuildClosePayload) Request() encoder.CloseRequest {
	return encoder.CloseRequest{
		Trader:     p.Trader,
		PairIndex:  int64Value(p.PairIndex),
		TradeIndex: int64Value(p.TradeIndex),
		Collateral: p.CollateralToClose,
	}
}

type PostBuildUpdateTpSlPayload struct {
	Trader     common.Address  `json:"trader"`
	PairIndex  *int64          `json:"pair_index"`
	TradeIndex *int64          `json:"trade_index"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
}

func (p *PostBuildUpdateTpSlPayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
		present(p.PairIndex, "pair_index"),
		notNegativeIndex(p.PairIndex, "pair_index"),
		present(p.TradeIndex, "trade_index"),
		notNegativeIndex(p.TradeIndex, "trade_index"),
		notNegative(&p.TakeProfit, "take_profit"),
		notNegative(&p.StopLoss, "stop_loss"),
	).Check()
}

func (p *PostBuildUpdateTpSlPayload) Request() encoder.TpSlRequest {
	return encoder.TpSlRequest{
		Trader:     p.Trader,
		PairIndex:  int64Value(p.PairIndex),
		TradeIndex: int64Value(p.TradeIndex),
		TakeProfit: p.TakeProfit,
		StopLoss:   p.StopLoss,
	}
}

// BuildTxResponse wraps an unsigned transaction.
type BuildTxResponse struct {
	Tx *encoder.EncodedTransaction `json:"tx"`
}

func (r *BuildTxResponse) Validate() error {
	if r.Tx == nil || r.Tx.To == (common.Address{}) || len(r.Tx.Data) == 0 {
		return errors.New("transaction is incomplete")
	}

	return nil
}

type PostPnLPayload struct {
	Collateral   decimal.Decimal `json:"collateral"`
	Leverage     decimal.Decimal `json:"leverage"`
	IsLong       *bool           `json:"is_long"`
	OpenPrice    decimal.Decimal `json:"open_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

func (p *PostPnLPayload) Validate() error {
	return vala.BeginValidation().Validate(
		positive(p.Collateral, "collateral"),
		positive(p.Leverage, "leverage"),
		present(p.IsLong, "is_long"),
		positive(p.OpenPrice, "open_price"),
		positive(p.CurrentPrice, "current_price"),
	).Check()
}

func (p *PostPnLPayload) Position() encoder.Position {
	return encoder.Position{
		Collateral: p.Collateral,
		Leverage:   p.Leverage,
		IsLong:     p.IsLong != nil && *p.IsLong,
		OpenPrice:  p.OpenPrice,
	}
}

type PnLResponse struct {
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPercentage decimal.Decimal `json:"pnl_percentage"`
}

func (r *PnLResponse) Validate() error {
	return nil
}
