package aggregation

import (
	"math"

	"github.com/shopspring/decimal"
)

// AmountDecimal converts a nullable amount into an exact decimal.
// ok is false for a nil amount or a non-finite float (NaN from a columnar source
// is treated as null).
func AmountDecimal(v *float64) (d decimal.Decimal, ok bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*v), true
}

// toFloat renders a decimal for JSON output. Responses carry plain numbers so
// clients never have to parse quoted decimals.
func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
