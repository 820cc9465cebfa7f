package encoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// OrderTypeMarketZeroFee is the protocol's "market, zero added fee" order type.
const OrderTypeMarketZeroFee uint8 = 3

// Protocol fixed point conventions.
const (
	PriceDecimals = 10 // prices, leverage, tp/sl and slippage
	USDCDecimals  = 6
)

// TradeIntent describes a position the user wants to open.
type TradeIntent struct {
	Trader          common.Address
	PairIndex       int64
	Collateral      decimal.Decimal // USDC
	Leverage        decimal.Decimal
	IsLong          bool
	OpenPrice       decimal.Decimal
	TakeProfit      *decimal.Decimal
	StopLoss        *decimal.Decimal
	SlippagePercent *decimal.Decimal
}

// CloseRequest closes (part of) an open position. Trade indexes are per pair.
type CloseRequest struct {
	Trader     common.Address
	PairIndex  int64
	TradeIndex int64
	Collateral decimal.Decimal // USDC to release
}

// TpSlRequest replaces take-profit and stop-loss of an open position.
type TpSlRequest struct {
	Trader          common.Address
	PairIndex       int64
	TradeIndex      int64
	TakeProfit      decimal.Decimal
	StopLoss        decimal.Decimal
	PriceUpdateData [][]byte
}

// EncodedTransaction is an unsigned transaction ready to be signed or wrapped into a user operation.
type EncodedTransaction struct {
	To      common.Address `json:"to"`
	Data    hexutil.Bytes  `json:"data"`
	Value   *hexutil.Big   `json:"value"`
	ChainID int64          `json:"chainId"`
}

// ValueInt returns the native value as big.Int, never nil.
func (tx *EncodedTransaction) ValueInt() *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(tx.Value.ToInt())
}

// PositionValidation is the result of ValidatePositionSize.
type PositionValidation struct {
	Valid         bool            `json:"valid"`
	PositionSize  decimal.Decimal `json:"positionSize"`
	Minimum       decimal.Decimal `json:"minimum"`
	MinCollateral decimal.Decimal `json:"minCollateral"`
	Reason        string          `json:"reason,omitempty"`
}

// TradeStruct mirrors the protocol's trade tuple.
type TradeStruct struct {
	Trader           common.Address
	PairIndex        *big.Int
	Index            *big.Int
	InitialPosToken  *big.Int
	PositionSizeUSDC *big.Int
	OpenPrice        *big.Int
	Buy              bool
	Leverage         *big.Int
	Tp               *big.Int
	Sl               *big.Int
	Timestamp        *big.Int
}

// Call is a single (target, calldata) pair of a multicall.
type Call struct {
	Target   common.Address
	CallData []byte
}
