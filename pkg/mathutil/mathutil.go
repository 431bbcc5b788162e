// Package mathutil provides rounding and tolerance helpers for currency values.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value half away from zero to two decimals, i.e. to represent
// real currency.
func Round(val float64) float64 {
	return RoundTo(val, 2)
}

// RoundTo rounds a value half away from zero to the given number of decimals.
// Non-finite values are returned unchanged.
func RoundTo(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// IsZero checks if a value is effectively zero (within one cent)
func IsZero(val float64) bool {
	return WithinTolerance(val, 0, constants.CurrencyTolerance)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// ToPercentage converts a rate fraction into a percentage.
func ToPercentage(rate float64) float64 {
	return rate * constants.PercentageMultiplier
}
