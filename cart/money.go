package cart

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// RoundCurrency rounds to currency precision using banker's rounding.
// Every money amount in this package goes through here; chained
// multiplications (rate x qty, then x discount%) drift at cent level
// when rounded naively.
func RoundCurrency(v decimal.Decimal, precision int32) decimal.Decimal {
	return v.RoundBank(precision)
}

// RoundQuantity rounds to quantity precision using banker's rounding.
func RoundQuantity(v decimal.Decimal, precision int32) decimal.Decimal {
	return v.RoundBank(precision)
}

// RoundToNearest rounds v to the nearest multiple of denom, e.g. the
// smallest payable coin (0.5 for half-unit currencies). A non-positive
// denom degrades to plain 2-decimal banker's rounding.
func RoundToNearest(v decimal.Decimal, denom decimal.Decimal) decimal.Decimal {
	if denom.LessThanOrEqual(decimal.Zero) {
		return v.RoundBank(2)
	}
	return v.Div(denom).RoundBank(0).Mul(denom)
}

// NewFromFloatSafe coerces NaN/Inf to zero instead of panicking.
// Malformed numeric input degrades to zero-priced, never an error.
func NewFromFloatSafe(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
