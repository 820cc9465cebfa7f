package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/positions"
)

type OpenTradesResponse struct {
	Trader common.Address        `json:"trader"`
	Trades []positions.OpenTrade `json:"trades"`
}

func (r *OpenTradesResponse) Validate() error {
	if r.Trades == nil {
		return errors.New("trades must be a list")
	}

	return nil
}

// PostTradesPnLPayload carries the current price per pair index, e.g. {"prices": {"1": "3100.5"}}.
// Only the priced pairs are read.
type PostTradesPnLPayload struct {
	Prices map[int64]decimal.Decimal `json:"prices"`
}

func (p *PostTradesPnLPayload) Validate() error {
	checkers := []vala.Checker{
		func() (bool, string) { return len(p.Prices) > 0, "parameter prices is required" },
	}
	for pair, price := range p.Prices {
		checkers = append(checkers, func() (bool, string) {
			return pair >= 0 && price.IsPositive(), fmt.Sprintf("price of pair %d must be > 0", pair)
		})
	}

	return vala.BeginValidation().Validate(checkers...).Check()
}

// Pairs returns the priced pair indexes.
func (p *PostTradesPnLPayload) Pairs() []int64 {
	pairs := make([]int64, 0, len(p.Prices))
	for pair := range p.Prices {
		pairs = append(pairs, pair)
	}

	return pairs
}

type PositionsPnLResponse struct {
	Trader    common.Address          `json:"trader"`
	Positions []positions.PositionPnL `json:"positions"`
}

func (r *PositionsPnLResponse) Validate() error {
	if r.Positions == nil {
		return errors.New("positions must be a list")
	}

	return nil
}
