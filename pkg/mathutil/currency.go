// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// ToCurrency rounds the exact binary value of a finite float to currency
// precision, half away from zero. A float printed as 1.005 is stored just
// below it and becomes 1.00, as with fixed-point formatting.
// Callers must check IsFinite first.
func ToCurrency(val float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(val, -constants.DecimalPlaces)
}
