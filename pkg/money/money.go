// Package money converts between tax-exclusive (HT) and tax-inclusive (TTC)
// amounts and computes cart totals and installment plans.
//
// Accumulation always happens on unrounded decimals; rounding to cents is only
// applied to values meant for display.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Inclusive returns ht * (1 + rate/100), unrounded.
func Inclusive(ht, ratePercent decimal.Decimal) decimal.Decimal {
	return ht.Mul(factor(ratePercent))
}

// Exclusive returns ttc / (1 + rate/100), unrounded.
func Exclusive(ttc, ratePercent decimal.Decimal) decimal.Decimal {
	return ttc.Div(factor(ratePercent))
}

func factor(ratePercent decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
}

// Line is the pricing input for one cart line.
type Line struct {
	UnitInclusive decimal.Decimal
	UnitExclusive decimal.Decimal
	Quantity      int
}

// LineTotals holds the display totals of a single line.
type LineTotals struct {
	Inclusive decimal.Decimal `json:"total_ttc"`
	Exclusive decimal.Decimal `json:"total_ht"`
}

// Totals is the derived money view of a cart.
type Totals struct {
	Inclusive decimal.Decimal `json:"total_ttc"`
	Exclusive decimal.Decimal `json:"total_ht"`
	Tax       decimal.Decimal `json:"total_tva"`
}

// Sum accumulates the lines without intermediate rounding. Tax is derived
// from the two sums so that Exclusive + Tax == Inclusive holds exactly.
func Sum(lines []Line) Totals {
	inclusive := decimal.Zero
	exclusive := decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		inclusive = inclusive.Add(l.UnitInclusive.Mul(qty))
		exclusive = exclusive.Add(l.UnitExclusive.Mul(qty))
	}
	return Totals{
		Inclusive: inclusive,
		Exclusive: exclusive,
		Tax:       inclusive.Sub(exclusive),
	}
}

// Display rounds the totals for presentation. Tax is recomputed from the
// rounded amounts so the displayed identity still holds to the cent.
func (t Totals) Display() Totals {
	inclusive := Round2(t.Inclusive)
	exclusive := Round2(t.Exclusive)
	return Totals{
		Inclusive: inclusive,
		Exclusive: exclusive,
		Tax:       inclusive.Sub(exclusive),
	}
}

// LineTotal returns the display totals for one line.
func LineTotal(l Line) LineTotals {
	qty := decimal.NewFromInt(int64(l.Quantity))
	return LineTotals{
		Inclusive: Round2(l.UnitInclusive.Mul(qty)),
		Exclusive: Round2(l.UnitExclusive.Mul(qty)),
	}
}

// Installments splits total into count payments of total/count rounded to
// cents. The last payment absorbs the rounding remainder, so the payments
// always add up to the rounded total. A count below 1 is treated as 1.
func Installments(total decimal.Decimal, count int) []decimal.Decimal {
	if count < 1 {
		count = 1
	}
	rounded := Round2(total)
	share := Round2(rounded.Div(decimal.NewFromInt(int64(count))))

	out := make([]decimal.Decimal, count)
	paid := decimal.Zero
	for i := 0; i < count-1; i++ {
		out[i] = share
		paid = paid.Add(share)
	}
	out[count-1] = rounded.Sub(paid)
	return out
}
