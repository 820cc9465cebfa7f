package positions

import (
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/trade/encoder"
)

// PositionPnL is an open trade priced at CurrentPrice.
type PositionPnL struct {
	Trade         OpenTrade       `json:"trade"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPercentage decimal.Decimal `json:"pnl_percentage"`
}

// WithPnL prices trades with prices keyed by pair index. Trades of pairs without a price
// are left out.
func WithPnL(trades []OpenTrade, prices map[int64]decimal.Decimal) []PositionPnL {
	positions := make([]PositionPnL, 0, len(trades))

	for _, t := range trades {
		price, ok := prices[t.PairIndex]
		if !ok {
			continue
		}

		pnl, pct := encoder.GrossPnL(t.Position(), price)
		positions = append(positions, PositionPnL{
			Trade:         t,
			CurrentPrice:  price,
			PnL:           pnl,
			PnLPercentage: pct,
		})
	}

	return positions
}
