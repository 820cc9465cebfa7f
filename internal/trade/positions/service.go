package positions

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/encoder"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Chain is the contract read access the service needs.
type Chain interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Config struct {
	// PairCount is the number of pair indexes scanned when the caller names none.
	PairCount int64
	// MaxTradesPerPair bounds the trade slots read per pair.
	MaxTradesPerPair int64
	// Concurrency bounds the pairs read in parallel.
	Concurrency int
}

// OpenTrade is a live position of a trader, in human units.
type OpenTrade struct {
	PairIndex  int64           `json:"pair_index"`
	TradeIndex int64           `json:"trade_index"`
	Collateral decimal.Decimal `json:"collateral"`
	Leverage   decimal.Decimal `json:"leverage"`
	IsLong     bool            `json:"is_long"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	TakeProfit decimal.Decimal `json:"tp"`
	StopLoss   decimal.Decimal `json:"sl"`
	OpenedAt   int64           `json:"opened_at"`
}

func (t OpenTrade) Position() encoder.Position {
	return encoder.Position{
		Collateral: t.Collateral,
		Leverage:   t.Leverage,
		IsLong:     t.IsLong,
		OpenPrice:  t.OpenPrice,
	}
}

// Service reads a trader's open trades from the protocol's trading storage.
type Service struct {
	cfg     Config
	encoder *encoder.Encoder
	chain   Chain
}

func NewService(cfg Config, enc *encoder.Encoder, chain Chain) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	return &Service{
		cfg:     cfg,
		encoder: enc,
		chain:   chain,
	}
}

// OpenTrades lists the open trades of trader on pairs, or on every pair index below
// PairCount when pairs is empty. Trades are ordered by pair, then trade index.
func (s *Service) OpenTrades(ctx context.Context, trader common.Address, pairs []int64) ([]OpenTrade, error) {
	if len(pairs) == 0 {
		pairs = make([]int64, s.cfg.PairCount)
		for i := range pairs {
			pairs[i] = int64(i)
		}
	}

	perPair := make([][]OpenTrade, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			trades, err := s.pairTrades(gctx, trader, pair)
			if err != nil {
				return errors.Wrapf(err, "failed to read trades of pair %d", pair)
			}
			perPair[i] = trades

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var trades []OpenTrade
	for _, t := range perPair {
		trades = append(trades, t...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].PairIndex != trades[j].PairIndex {
			return trades[i].PairIndex < trades[j].PairIndex
		}
		return trades[i].TradeIndex < trades[j].TradeIndex
	})

	return trades, nil
}

// pairTrades walks the trade slots of one pair until the stored count is found.
// Slots of closed trades stay empty, so live trades need not be contiguous.
func (s *Service) pairTrades(ctx context.Context, trader common.Address, pair int64) ([]OpenTrade, error) {
	count, err := s.count(ctx, trader, pair)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	var trades []OpenTrade
	for index := int64(0); index < s.cfg.MaxTradesPerPair && int64(len(trades)) < count; index++ {
		stored, err := s.slot(ctx, trader, pair, index)
		if err != nil {
			return nil, err
		}
		if !stored.IsOpen() {
			continue
		}

		p := stored.Position()
		trades = append(trades, OpenTrade{
			PairIndex:  pair,
			TradeIndex: index,
			Collateral: p.Collateral,
			Leverage:   p.Leverage,
			IsLong:     p.IsLong,
			OpenPrice:  p.OpenPrice,
			TakeProfit: encoder.UnscalePrice(orZero(stored.Tp)),
			StopLoss:   encoder.UnscalePrice(orZero(stored.Sl)),
			OpenedAt:   orZero(stored.Timestamp).Int64(),
		})
	}

	return trades, nil
}

func (s *Service) count(ctx context.Context, trader common.Address, pair int64) (int64, error) {
	data, err := s.encoder.OpenTradesCountCall(trader, pair)
	if err != nil {
		return 0, err
	}

	out, err := s.call(ctx, data)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read open trades count")
	}

	n, err := encoder.DecodeUint256(out)
	if err != nil {
		return 0, err
	}

	return n.Int64(), nil
}

func (s *Service) slot(ctx context.Context, trader common.Address, pair, index int64) (*encoder.TradeStruct, error) {
	data, err := s.encoder.OpenTradeCall(trader, pair, index)
	if err != nil {
		return nil, err
	}

	out, err := s.call(ctx, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read trade %d", index)
	}

	return encoder.DecodeStoredTrade(out)
}

func (s *Service) call(ctx context.Context, data []byte) ([]byte, error) {
	storage := s.encoder.Config().TradingStorage

	return s.chain.CallContract(ctx, ethereum.CallMsg{To: &storage, Data: data}, nil)
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}

	return n
}
