package encoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/txerr"
)

// Config holds the protocol deployment and trading defaults the encoder works with.
type Config struct {
	ChainID                int64
	Trading                common.Address
	TradingStorage         common.Address
	USDC                   common.Address
	Multicall              common.Address
	MinPositionUSD         decimal.Decimal
	LongTPMultiplier       decimal.Decimal
	ShortTPMultiplier      decimal.Decimal
	DefaultSlippagePercent decimal.Decimal
	ApprovalCapUSDC        decimal.Decimal
}

// Encoder maps trade intents to ABI encoded transactions. It holds no mutable state.
type Encoder struct {
	cfg Config
}

func New(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

func (e *Encoder) Config() Config {
	return e.cfg
}

// ValidatePositionSize checks collateral×leverage against the protocol's minimum position size.
// It never fails; invalid input yields an invalid result.
func (e *Encoder) ValidatePositionSize(collateral, leverage decimal.Decimal) PositionValidation {
	minimum := e.cfg.MinPositionUSD
	res := PositionValidation{
		PositionSize: collateral.Mul(leverage),
		Minimum:      minimum,
	}

	if !leverage.IsPositive() {
		res.Reason = "leverage must be positive"
		return res
	}

	res.MinCollateral = minimum.Div(leverage)
	if res.PositionSize.LessThan(minimum) {
		res.Reason = "position size " + res.PositionSize.String() + " is below the minimum of " + minimum.String() +
			", collateral of at least " + res.MinCollateral.String() + " required at " + leverage.String() + "x"
		return res
	}

	res.Valid = true
	return res
}

// TakeProfit returns the default take-profit price for a position opened at openPrice.
func (e *Encoder) TakeProfit(openPrice decimal.Decimal, isLong bool) decimal.Decimal {
	if isLong {
		return openPrice.Mul(e.cfg.LongTPMultiplier)
	}

	return openPrice.Mul(e.cfg.ShortTPMultiplier)
}

// OpenTrade builds a delegatedAction(openTrade) market order. executionFee is sent as value.
func (e *Encoder) OpenTrade(intent TradeIntent, executionFee *big.Int) (*EncodedTransaction, error) {
	if intent.Trader == (common.Address{}) {
		return nil, txerr.Validation("trader address is required")
	}
	if intent.PairIndex < 0 {
		return nil, txerr.Validation("invalid pair index %d", intent.PairIndex)
	}
	if !intent.Collateral.IsPositive() {
		return nil, txerr.Validation("collateral must be positive")
	}
	if !intent.OpenPrice.IsPositive() {
		return nil, txerr.Validation("open price must be positive")
	}

	if v := e.ValidatePositionSize(intent.Collateral, intent.Leverage); !v.Valid {
		return nil, txerr.Validation("%s", v.Reason)
	}

	tp := e.TakeProfit(intent.OpenPrice, intent.IsLong)
	if intent.TakeProfit != nil {
		tp = *intent.TakeProfit
	}

	sl := decimal.Zero
	if intent.StopLoss != nil {
		sl = *intent.StopLoss
	}

	slippage := e.cfg.DefaultSlippagePercent
	if intent.SlippagePercent != nil {
		slippage = *intent.SlippagePercent
	}

	trade := TradeStruct{
		Trader:           intent.Trader,
		PairIndex:        big.NewInt(intent.PairIndex),
		Index:            new(big.Int),
		InitialPosToken:  new(big.Int),
		PositionSizeUSDC: ScaleUSDC(intent.Collateral),
		OpenPrice:        ScalePrice(intent.OpenPrice),
		Buy:              intent.IsLong,
		Leverage:         ScalePrice(intent.Leverage),
		Tp:               ScalePrice(tp),
		Sl:               ScalePrice(sl),
		Timestamp:        new(big.Int),
	}

	inner, err := tradingABI.Pack("openTrade", trade, OrderTypeMarketZeroFee, ScalePrice(slippage))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack openTrade")
	}

	return e.delegated(intent.Trader, inner, executionFee)
}

// CloseTrade builds a delegatedAction(closeTradeMarket) releasing req.Collateral USDC.
func (e *Encoder) CloseTrade(req CloseRequest, executionFee *big.Int) (*EncodedTransaction, error) {
	if req.Trader == (common.Address{}) {
		return nil, txerr.Validation("trader address is required")
	}
	if req.PairIndex < 0 {
		return nil, txerr.Validation("invalid pair index %d, must be >= 0", req.PairIndex)
	}
	if req.TradeIndex < 0 {
		return nil, txerr.Validation("invalid trade index %d, must be >= 0", req.TradeIndex)
	}
	if !req.Collateral.IsPositive() {
		return nil, txerr.Validation("collateral to close must be > 0")
	}

	inner, err := tradingABI.Pack("closeTradeMarket",
		big.NewInt(req.PairIndex),
		big.NewInt(req.TradeIndex),
		ScaleUSDC(req.Collateral),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack closeTradeMarket")
	}

	return e.delegated(req.Trader, inner, executionFee)
}

// UpdateTpSl builds a delegatedAction(updateTpAndSl).
func (e *Encoder) UpdateTpSl(req TpSlRequest, executionFee *big.Int) (*EncodedTransaction, error) {
	if req.Trader == (common.Address{}) {
		return nil, txerr.Validation("trader address is required")
	}
	if req.PairIndex < 0 || req.TradeIndex < 0 {
		return nil, txerr.Validation("invalid trade %d/%d", req.PairIndex, req.TradeIndex)
	}
	if req.TakeProfit.IsNegative() || req.StopLoss.IsNegative() {
		return nil, txerr.Validation("take profit and stop loss must not be negative")
	}

	priceData := req.PriceUpdateData
	if priceData == nil {
		priceData = [][]byte{}
	}

	inner, err := tradingABI.Pack("updateTpAndSl",
		big.NewInt(req.PairIndex),
		big.NewInt(req.TradeIndex),
		ScalePrice(req.StopLoss),
		ScalePrice(req.TakeProfit),
		priceData,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack updateTpAndSl")
	}

	return e.delegated(req.Trader, inner, executionFee)
}

// DelegatedAction wraps inner calldata so the trader's delegate can execute it.
func (e *Encoder) DelegatedAction(trader common.Address, inner []byte) ([]byte, error) {
	data, err := tradingABI.Pack("delegatedAction", trader, inner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack delegatedAction")
	}

	return data, nil
}

func (e *Encoder) delegated(trader common.Address, inner []byte, value *big.Int) (*EncodedTransaction, error) {
	data, err := e.DelegatedAction(trader, inner)
	if err != nil {
		return nil, err
	}

	return e.tx(e.cfg.Trading, data, value), nil
}

func (e *Encoder) tx(to common.Address, data []byte, value *big.Int) *EncodedTransaction {
	if value == nil {
		value = new(big.Int)
	}

	return &EncodedTransaction{
		To:      to,
		Data:    data,
		Value:   (*hexutil.Big)(new(big.Int).Set(value)),
		ChainID: e.cfg.ChainID,
	}
}
