// Package money holds the rounding and weighting arithmetic shared by the
// pricing engine. Values stay float64 at the API boundary; decimal is used so
// half-cent cases round the way a person reading the quote expects.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, half away from zero.
// Non-finite values are returned unchanged.
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Blend weights a catalog price against a historical average:
// catalog*weight + historical*(1-weight), rounded to two decimals.
func Blend(catalog, historical, weight float64) float64 {
	w := decimal.NewFromFloat(weight)
	c := decimal.NewFromFloat(catalog).Mul(w)
	h := decimal.NewFromFloat(historical).Mul(decimal.NewFromInt(1).Sub(w))
	return c.Add(h).Round(2).InexactFloat64()
}

// Sum adds values without accumulating binary float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// MarkupPercent returns (sell-cost)/cost*100, or nil when cost is not positive.
func MarkupPercent(sell, cost float64) *float64 {
	if cost <= 0 {
		return nil
	}
	m := RoundTo((sell-cost)/cost*100, 2)
	return &m
}
