package test

import (
	"bytes"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/encoder"
)

const fakeStorageABIJSON = `[
	{"type":"function","name":"openTradesCount","stateMutability":"view",
		"inputs":[{"name":"trader","type":"address"},{"name":"pairIndex","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"openTrades","stateMutability":"view",
		"inputs":[{"name":"trader","type":"address"},{"name":"pairIndex","type":"uint256"},{"name":"index","type":"uint256"}],
		"outputs":[
			{"name":"trader","type":"address"},
			{"name":"pairIndex","type":"uint256"},
			{"name":"index","type":"uint256"},
			{"name":"initialPosToken","type":"uint256"},
			{"name":"positionSizeUSDC","type":"uint256"},
			{"name":"openPrice","type":"uint256"},
			{"name":"buy","type":"bool"},
			{"name":"leverage","type":"uint256"},
			{"name":"tp","type":"uint256"},
			{"name":"sl","type":"uint256"},
			{"name":"timestamp","type":"uint256"}]}
]`

var fakeStorageABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(fakeStorageABIJSON))
	if err != nil {
		panic(err)
	}

	return parsed
}()

// StoredTrade is a trade held by FakeTradingStorage, in human units.
type StoredTrade struct {
	PairIndex  int64
	Index      int64
	Collateral decimal.Decimal
	Leverage   decimal.Decimal
	Long       bool
	OpenPrice  decimal.Decimal
	TakeProfit decimal.Decimal
	StopLoss   decimal.Decimal
	Timestamp  int64
}

type storageKey struct {
	trader common.Address
	pair   int64
	index  int64
}

// FakeTradingStorage answers openTradesCount and openTrades reads the way the protocol's
// TradingStorage does: closed slots read as zero trades.
type FakeTradingStorage struct {
	mu     sync.Mutex
	trades map[storageKey]StoredTrade
	failOn map[int64]bool
}

// NewFakeTradingStorage serves a fresh storage at addr on f.
func NewFakeTradingStorage(f *FakeNode, addr common.Address) *FakeTradingStorage {
	s := &FakeTradingStorage{
		trades: make(map[storageKey]StoredTrade),
		failOn: make(map[int64]bool),
	}
	f.SetCallHandler(addr, s.Call)

	return s
}

func (s *FakeTradingStorage) Put(trader common.Address, trade StoredTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[storageKey{trader, trade.PairIndex, trade.Index}] = trade
}

// FailPair makes every read of pair revert.
func (s *FakeTradingStorage) FailPair(pair int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failOn[pair] = true
}

// Call answers raw calldata, suitable as a CallHandler.
func (s *FakeTradingStorage) Call(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("missing selector")
	}

	countMethod := fakeStorageABI.Methods["openTradesCount"]
	tradeMethod := fakeStorageABI.Methods["openTrades"]

	switch {
	case bytes.Equal(data[:4], countMethod.ID):
		args, err := countMethod.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		trader, pair := args[0].(common.Address), args[1].(*big.Int).Int64()

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.failOn[pair] {
			return nil, errors.Errorf("pair %d unavailable", pair)
		}

		var n int64
		for k := range s.trades {
			if k.trader == trader && k.pair == pair {
				n++
			}
		}

		return countMethod.Outputs.Pack(big.NewInt(n))
	case bytes.Equal(data[:4], tradeMethod.ID):
		args, err := tradeMethod.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		trader, pair, index := args[0].(common.Address), args[1].(*big.Int).Int64(), args[2].(*big.Int).Int64()

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.failOn[pair] {
			return nil, errors.Errorf("pair %d unavailable", pair)
		}

		t, ok := s.trades[storageKey{trader, pair, index}]
		if !ok {
			zero := new(big.Int)
			return tradeMethod.Outputs.Pack(common.Address{}, zero, zero, zero, zero, zero, false, zero, zero, zero, zero)
		}

		return tradeMethod.Outputs.Pack(
			trader,
			big.NewInt(pair),
			big.NewInt(index),
			new(big.Int),
			encoder.ScaleUSDC(t.Collateral),
			encoder.ScalePrice(t.OpenPrice),
			t.Long,
			encoder.ScalePrice(t.Leverage),
			encoder.ScalePrice(t.TakeProfit),
			encoder.ScalePrice(t.StopLoss),
			big.NewInt(t.Timestamp),
		)
	default:
		return nil, errors.New("unknown selector")
	}
}
