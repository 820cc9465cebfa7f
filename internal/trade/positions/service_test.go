package positions_test

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/test"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/trade/positions"
)

var (
	trader  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	storage = common.HexToAddress("0x8a311D7048c35985aa31C131B9A13e03a5f7422d")
)

// storageChain routes CallContract to a fake trading storage.
type storageChain struct {
	storage *test.FakeTradingStorage
	calls   atomic.Int64
}

func (c *storageChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.calls.Add(1)
	if msg.To == nil || *msg.To != storage {
		return nil, ethereum.NotFound
	}

	return c.storage.Call(msg.Data)
}

func newService(t *testing.T, cfg positions.Config) (*positions.Service, *test.FakeTradingStorage, *storageChain) {
	t.Helper()

	n := test.NewFakeNode(t, 8453)
	fake := test.NewFakeTradingStorage(n, storage)
	chain := &storageChain{storage: fake}

	enc := encoder.New(encoder.Config{ChainID: 8453, TradingStorage: storage})

	return positions.NewService(cfg, enc, chain), fake, chain
}

func stored(pair, index int64, long bool) test.StoredTrade {
	return test.StoredTrade{
		PairIndex:  pair,
		Index:      index,
		Collateral: decimal.NewFromInt(10),
		Leverage:   decimal.NewFromInt(100),
		Long:       long,
		OpenPrice:  decimal.NewFromInt(3000),
		TakeProfit: decimal.NewFromInt(3600),
		StopLoss:   decimal.NewFromInt(2900),
		Timestamp:  1_700_000_000,
	}
}

func TestOpenTradesSkipsClosedSlots(t *testing.T) {
	svc, fake, _ := newService(t, positions.Config{PairCount: 4, MaxTradesPerPair: 10})

	fake.Put(trader, stored(1, 0, true))
	fake.Put(trader, stored(1, 3, false))
	fake.Put(common.HexToAddress("0x2222222222222222222222222222222222222222"), stored(1, 1, true))

	trades, err := svc.OpenTrades(t.Context(), trader, []int64{1})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, int64(0), trades[0].TradeIndex)
	assert.True(t, trades[0].IsLong)
	assert.Equal(t, int64(3), trades[1].TradeIndex)
	assert.False(t, trades[1].IsLong)

	got := trades[0]
	assert.Equal(t, int64(1), got.PairIndex)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Collateral), got.Collateral.String())
	assert.True(t, decimal.NewFromInt(100).Equal(got.Leverage), got.Leverage.String())
	assert.True(t, decimal.NewFromInt(3000).Equal(got.OpenPrice), got.OpenPrice.String())
	assert.True(t, decimal.NewFromInt(3600).Equal(got.TakeProfit), got.TakeProfit.String())
	assert.True(t, decimal.NewFromInt(2900).Equal(got.StopLoss), got.StopLoss.String())
	assert.Equal(t, int64(1_700_000_000), got.OpenedAt)
}

func TestOpenTradesScansAllPairsInOrder(t *testing.T) {
	svc, fake, _ := newService(t, positions.Config{PairCount: 6, MaxTradesPerPair: 5, Concurrency: 2})

	fake.Put(trader, stored(5, 2, true))
	fake.Put(trader, stored(0, 1, true))
	fake.Put(trader, stored(5, 0, false))
	fake.Put(trader, stored(3, 4, true))

	trades, err := svc.OpenTrades(t.Context(), trader, nil)
	require.NoError(t, err)
	require.Len(t, trades, 4)

	var order [][2]int64
	for _, tr := range trades {
		order = append(order, [2]int64{tr.PairIndex, tr.TradeIndex})
	}
	assert.Equal(t, [][2]int64{{0, 1}, {3, 4}, {5, 0}, {5, 2}}, order)
}

func TestOpenTradesStopsAtStoredCount(t *testing.T) {
	svc, fake, chain := newService(t, positions.Config{PairCount: 1, MaxTradesPerPair: 40})

	fake.Put(trader, stored(0, 0, true))

	trades, err := svc.OpenTrades(t.Context(), trader, []int64{0})
	require.NoError(t, err)
	require.Len(t, trades, 1)

	// one count read and one slot read
	assert.Equal(t, int64(2), chain.calls.Load())
}

func TestOpenTradesBoundedBySlotLimit(t *testing.T) {
	svc, fake, _ := newService(t, positions.Config{PairCount: 1, MaxTradesPerPair: 2})

	fake.Put(trader, stored(0, 0, true))
	fake.Put(trader, stored(0, 5, true))

	trades, err := svc.OpenTrades(t.Context(), trader, []int64{0})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(0), trades[0].TradeIndex)
}

func TestOpenTradesNoneOpen(t *testing.T) {
	svc, _, chain := newService(t, positions.Config{PairCount: 3, MaxTradesPerPair: 5})

	trades, err := svc.OpenTrades(t.Context(), trader, nil)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, int64(3), chain.calls.Load())
}

func TestOpenTradesPairFailure(t *testing.T) {
	svc, fake, _ := newService(t, positions.Config{PairCount: 3, MaxTradesPerPair: 5})

	fake.Put(trader, stored(0, 0, true))
	fake.FailPair(2)

	_, err := svc.OpenTrades(t.Context(), trader, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pair 2")
}

func TestWithPnL(t *testing.T) {
	trades := []positions.OpenTrade{
		{PairIndex: 1, TradeIndex: 0, Collateral: decimal.NewFromInt(10), Leverage: decimal.NewFromInt(100), IsLong: true, OpenPrice: decimal.NewFromInt(3000)},
		{PairIndex: 1, TradeIndex: 1, Collateral: decimal.NewFromInt(10), Leverage: decimal.NewFromInt(100), IsLong: false, OpenPrice: decimal.NewFromInt(3000)},
		{PairIndex: 2, TradeIndex: 0, Collateral: decimal.NewFromInt(10), Leverage: decimal.NewFromInt(10), IsLong: true, OpenPrice: decimal.NewFromInt(100)},
	}

	priced := positions.WithPnL(trades, map[int64]decimal.Decimal{1: decimal.NewFromInt(3030)})
	require.Len(t, priced, 2)

	assert.True(t, decimal.NewFromInt(10).Equal(priced[0].PnL), priced[0].PnL.String())
	assert.True(t, decimal.NewFromInt(100).Equal(priced[0].PnLPercentage), priced[0].PnLPercentage.String())
	assert.True(t, decimal.NewFromInt(-10).Equal(priced[1].PnL), priced[1].PnL.String())
	assert.True(t, decimal.NewFromInt(3030).Equal(priced[1].CurrentPrice))

	assert.Empty(t, positions.WithPnL(trades, nil))
	assert.NotNil(t, positions.WithPnL(nil, nil))
}
