package encoder

import "github.com/shopspring/decimal"

// Position is an open trade as reported by the protocol, in human units.
type Position struct {
	Collateral decimal.Decimal
	Leverage   decimal.Decimal
	IsLong     bool
	OpenPrice  decimal.Decimal
}

// GrossPnL returns profit in USDC and as percentage of collateral, before fees.
func GrossPnL(p Position, currentPrice decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !p.OpenPrice.IsPositive() || !p.Collateral.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	change := currentPrice.Sub(p.OpenPrice).Div(p.OpenPrice)
	if !p.IsLong {
		change = change.Neg()
	}

	pnl := p.Collateral.Mul(p.Leverage).Mul(change)
	pct := pnl.Div(p.Collateral).Mul(decimal.NewFromInt(100))

	return pnl, pct
}
