package money_test

import (
	"testing"

	"clinipos/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLine_DiscountThenTax(t *testing.T) {
	// 2 x 350.00 with 10% discount, no tax:
	// base 700, discount 70, total 630
	line := money.ComputeLine(d("2"), d("350"), d("10"), d("0"))

	assert.True(t, line.Base.Equal(d("700")))
	assert.True(t, line.Discount.Equal(d("70")))
	assert.True(t, line.Tax.Equal(d("0")))
	assert.True(t, line.Total.Equal(d("630")))
}

func TestComputeLine_TaxOnDiscountedBase(t *testing.T) {
	// 1 x 100 with 10% discount and 15% tax:
	// base 100, discount 10, tax on 90 = 13.5, total 103.5
	line := money.ComputeLine(d("1"), d("100"), d("10"), d("15"))

	assert.True(t, line.Discount.Equal(d("10")))
	assert.True(t, line.Tax.Equal(d("13.5")))
	assert.True(t, line.Total.Equal(d("103.5")))
}

func TestComputeLine_ExactAccumulation(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3 in base-10 arithmetic.
	a := money.ComputeLine(d("1"), d("0.1"), d("0"), d("0"))
	b := money.ComputeLine(d("1"), d("0.2"), d("0"), d("0"))

	sum := a.Total.Add(b.Total)
	assert.True(t, sum.Equal(d("0.3")), "got %s", sum)
}

func TestComputeLine_PctBounds(t *testing.T) {
	// 100% discount zeroes the line regardless of tax rate.
	full := money.ComputeLine(d("3"), d("45.99"), d("100"), d("15"))
	assert.True(t, full.Total.IsZero())
	assert.True(t, full.Tax.IsZero())

	// 0% discount leaves base intact.
	none := money.ComputeLine(d("3"), d("45.99"), d("0"), d("0"))
	assert.True(t, none.Total.Equal(d("137.97")))
}

func TestComputeLine_FractionalQty(t *testing.T) {
	// 1.5 units at 33.33: base 49.995, stays exact until rounding
	line := money.ComputeLine(d("1.5"), d("33.33"), d("0"), d("0"))
	assert.True(t, line.Base.Equal(d("49.995")))
	assert.True(t, money.Round2(line.Base).Equal(d("50.00")))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "255.50", money.Round2(d("255.495")).StringFixed(2))
	assert.Equal(t, "255.49", money.Round2(d("255.494")).StringFixed(2))
	assert.Equal(t, "-0.50", money.Round2(d("-0.5")).StringFixed(2))
}

func TestMinMax(t *testing.T) {
	assert.True(t, money.Min(d("10"), d("7.5")).Equal(d("7.5")))
	assert.True(t, money.Max(d("10"), d("7.5")).Equal(d("10")))
	assert.True(t, money.Max(d("0"), d("-3")).Equal(d("0")))
}
