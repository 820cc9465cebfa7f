package encoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// OpenTradesCountCall returns the calldata reading how many trades trader holds on pairIndex.
func (e *Encoder) OpenTradesCountCall(trader common.Address, pairIndex int64) ([]byte, error) {
	data, err := storageABI.Pack("openTradesCount", trader, big.NewInt(pairIndex))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack openTradesCount")
	}

	return data, nil
}

// OpenTradeCall returns the calldata reading the trade slot index of trader on pairIndex.
func (e *Encoder) OpenTradeCall(trader common.Address, pairIndex, index int64) ([]byte, error) {
	data, err := storageABI.Pack("openTrades", trader, big.NewInt(pairIndex), big.NewInt(index))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack openTrades")
	}

	return data, nil
}

// DecodeStoredTrade decodes an openTrades result. Empty slots decode to a zero leverage trade.
func DecodeStoredTrade(out []byte) (*TradeStruct, error) {
	method := storageABI.Methods["openTrades"]

	values, err := method.Outputs.Unpack(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack openTrades")
	}

	var trade TradeStruct
	if err := method.Outputs.Copy(&trade, values); err != nil {
		return nil, errors.Wrap(err, "unexpected openTrades output")
	}

	return &trade, nil
}

// IsOpen reports whether the slot holds a live trade.
func (t *TradeStruct) IsOpen() bool {
	return t.Leverage != nil && t.Leverage.Sign() > 0
}

// Position converts the stored trade to human units.
func (t *TradeStruct) Position() Position {
	return Position{
		Collateral: UnscaleUSDC(bigOrZero(t.PositionSizeUSDC)),
		Leverage:   UnscalePrice(bigOrZero(t.Leverage)),
		IsLong:     t.Buy,
		OpenPrice:  UnscalePrice(bigOrZero(t.OpenPrice)),
	}
}

func bigOrZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}

	return n
}
