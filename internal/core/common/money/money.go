// Package money holds the decimal helpers shared by the ledger and analytics code.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is zero.
func Percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	f, _ := part.Div(whole).Mul(hundred).Round(2).Float64()
	return f
}

// Change returns the relative change from previous to current in percent, 0 when previous is zero.
func Change(current, previous decimal.Decimal) float64 {
	return Percent(current.Sub(previous), previous)
}

// Average returns total/count rounded to cents, 0 when count is zero.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// Sum adds every amount.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Float converts to float64 for ratio style outputs.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// RoundFloat rounds a float ratio to two places.
func RoundFloat(f float64) float64 {
	r, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return r
}
