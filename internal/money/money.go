// Package money implements the exact-decimal arithmetic used for every
// monetary figure in the system. All amounts are base-10 fixed-point values
// carried as shopspring decimals; rounding to 2 fractional digits happens
// only at the point of persistence, never inside intermediate accumulation.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmounts holds the exact (unrounded) components of one invoice line.
type LineAmounts struct {
	Base     decimal.Decimal // qty * unitPrice
	Discount decimal.Decimal // base * discountPct/100
	Tax      decimal.Decimal // (base - discount) * taxRatePct/100
	Total    decimal.Decimal // base - discount + tax
}

// ComputeLine applies the discount-then-tax formula for a single line.
// Division by 100 is a pure base-10 exponent shift, so every component
// stays exact.
func ComputeLine(qty, unitPrice, discountPct, taxRatePct decimal.Decimal) LineAmounts {
	base := qty.Mul(unitPrice)
	discount := base.Mul(discountPct).Div(hundred)
	afterDiscount := base.Sub(discount)
	tax := afterDiscount.Mul(taxRatePct).Div(hundred)
	return LineAmounts{
		Base:     base,
		Discount: discount,
		Tax:      tax,
		Total:    afterDiscount.Add(tax),
	}
}

// Round2 rounds an exact amount to the 2 fractional digits stored in the DB.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
