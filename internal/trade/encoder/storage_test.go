package encoder_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/test"
	"github/chapool/go-trader/internal/trade/encoder"
)

func TestDecodeStoredTrade(t *testing.T) {
	enc := newEncoder()
	n := test.NewFakeNode(t, 8453)
	storage := test.NewFakeTradingStorage(n, common.Address{})

	storage.Put(trader, test.StoredTrade{
		PairIndex:  2,
		Index:      1,
		Collateral: decimal.RequireFromString("12.5"),
		Leverage:   decimal.NewFromInt(75),
		Long:       false,
		OpenPrice:  decimal.RequireFromString("64000.25"),
		TakeProfit: decimal.NewFromInt(50000),
		Timestamp:  42,
	})

	data, err := enc.OpenTradeCall(trader, 2, 1)
	require.NoError(t, err)
	out, err := storage.Call(data)
	require.NoError(t, err)

	trade, err := encoder.DecodeStoredTrade(out)
	require.NoError(t, err)
	require.True(t, trade.IsOpen())

	assert.Equal(t, trader, trade.Trader)
	assert.Equal(t, "2", trade.PairIndex.String())
	assert.Equal(t, scaled(50000, 10).String(), trade.Tp.String())
	assert.Equal(t, "42", trade.Timestamp.String())

	p := trade.Position()
	assert.False(t, p.IsLong)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Collateral), p.Collateral.String())
	assert.True(t, decimal.NewFromInt(75).Equal(p.Leverage), p.Leverage.String())
	assert.True(t, decimal.RequireFromString("64000.25").Equal(p.OpenPrice), p.OpenPrice.String())
}

func TestDecodeStoredTradeEmptySlot(t *testing.T) {
	enc := newEncoder()
	n := test.NewFakeNode(t, 8453)
	storage := test.NewFakeTradingStorage(n, common.Address{})

	data, err := enc.OpenTradeCall(trader, 0, 0)
	require.NoError(t, err)
	out, err := storage.Call(data)
	require.NoError(t, err)

	trade, err := encoder.DecodeStoredTrade(out)
	require.NoError(t, err)
	assert.False(t, trade.IsOpen())
	assert.True(t, trade.Position().Collateral.IsZero())
}

func TestOpenTradesCountCall(t *testing.T) {
	enc := newEncoder()
	n := test.NewFakeNode(t, 8453)
	storage := test.NewFakeTradingStorage(n, common.Address{})
	storage.Put(trader, test.StoredTrade{PairIndex: 3, Index: 0, Leverage: decimal.NewFromInt(10)})
	storage.Put(trader, test.StoredTrade{PairIndex: 3, Index: 7, Leverage: decimal.NewFromInt(10)})

	data, err := enc.OpenTradesCountCall(trader, 3)
	require.NoError(t, err)
	out, err := storage.Call(data)
	require.NoError(t, err)

	count, err := encoder.DecodeUint256(out)
	require.NoError(t, err)
	assert.Equal(t, "2", count.String())

	_, err = encoder.DecodeStoredTrade([]byte{0x01})
	require.Error(t, err)
}
