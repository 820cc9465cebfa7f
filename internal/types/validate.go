package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github.com/shopspring/decimal"
)

func addressSet(a common.Address, name string) vala.Checker {
	return func() (bool, string) {
		return a != (common.Address{}), fmt.Sprintf("parameter %s is required", name)
	}
}

func present[T any](v *T, name string) vala.Checker {
	return func() (bool, string) {
		return v != nil, fmt.Sprintf("parameter %s is required", name)
	}
}

func notNegativeIndex(v *int64, name string) vala.Checker {
	return func() (bool, string) {
		return v == nil || *v >= 0, fmt.Sprintf("parameter %s must be >= 0", name)
	}
}

func positive(d decimal.Decimal, name string) vala.Checker {
	return func() (bool, string) {
		return d.IsPositive(), fmt.Sprintf("parameter %s must be > 0", name)
	}
}

func notNegative(d *decimal.Decimal, name string) vala.Checker {
	return func() (bool, string) {
		return d == nil || !d.IsNegative(), fmt.Sprintf("parameter %s must be >= 0", name)
	}
}

func between(d decimal.Decimal, low, high int64, name string) vala.Checker {
	return func() (bool, string) {
		ok := d.GreaterThanOrEqual(decimal.NewFromInt(low)) && d.LessThanOrEqual(decimal.NewFromInt(high))
		return ok, fmt.Sprintf("parameter %s must be between %d and %d", name, low, high)
	}
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}

	return *v
}
