package encoder

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ScalePrice converts a human price, leverage or percentage to the protocol's 10 implied decimals,
// rounding half away from zero.
func ScalePrice(d decimal.Decimal) *big.Int {
	return d.Shift(PriceDecimals).Round(0).BigInt()
}

// ScaleUSDC converts a USDC amount to its 6 decimal base unit, rounding half away from zero.
func ScaleUSDC(d decimal.Decimal) *big.Int {
	return d.Shift(USDCDecimals).Round(0).BigInt()
}

func UnscalePrice(n *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(n, -PriceDecimals)
}

func UnscaleUSDC(n *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(n, -USDCDecimals)
}
