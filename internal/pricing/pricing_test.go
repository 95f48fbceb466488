package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/pricing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var vat = d("0.16")

func TestCalculate(t *testing.T) {
	t.Run("Should price a single-item sale with change", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("100.00"), Quantity: 3, Discount: decimal.Zero},
			},
			decimal.Zero, d("400"), vat,
		)
		require.NoError(t, err)

		assert.True(t, quote.Subtotal.Equal(d("300.00")), "subtotal = %s", quote.Subtotal)
		assert.True(t, quote.TaxAmount.Equal(d("48.00")), "tax = %s", quote.TaxAmount)
		assert.True(t, quote.Total.Equal(d("348.00")), "total = %s", quote.Total)
		assert.True(t, quote.Change.Equal(d("52.00")), "change = %s", quote.Change)
	})

	t.Run("Should sum line totals into subtotal exactly", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("19.99"), Quantity: 3, Discount: d("5.00")},
				{UnitPrice: d("0.35"), Quantity: 7, Discount: decimal.Zero},
				{UnitPrice: d("120.50"), Quantity: 1, Discount: d("0.50")},
			},
			decimal.Zero, d("1000"), vat,
		)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, lt := range quote.LineTotals {
			sum = sum.Add(lt)
		}
		assert.True(t, sum.Equal(quote.Subtotal))
		assert.True(t, quote.Total.Equal(quote.TaxableAmount.Add(quote.TaxAmount)))
	})

	t.Run("Should apply line discount before subtotal", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("50.00"), Quantity: 2, Discount: d("10.00")},
			},
			decimal.Zero, d("200"), vat,
		)
		require.NoError(t, err)
		assert.True(t, quote.Subtotal.Equal(d("90.00")))
	})

	t.Run("Should reject a line discount exceeding the line total", func(t *testing.T) {
		_, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("10.00"), Quantity: 1, Discount: d("15.00")},
			},
			decimal.Zero, d("100"), vat,
		)
		require.ErrorIs(t, err, pricing.ErrNegativeLineTotal)
	})

	t.Run("Should let an order discount above subtotal go negative", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("10.00"), Quantity: 1, Discount: decimal.Zero},
			},
			d("25.00"), d("100"), vat,
		)
		require.NoError(t, err)
		assert.True(t, quote.TaxableAmount.Equal(d("-15.00")))
		assert.True(t, quote.TaxAmount.Equal(d("-2.40")))
		assert.True(t, quote.Total.Equal(d("-17.40")))
	})

	t.Run("Should report zero change on under-payment without failing", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("100.00"), Quantity: 1, Discount: decimal.Zero},
			},
			decimal.Zero, d("50"), vat,
		)
		require.NoError(t, err)
		assert.True(t, quote.Change.IsZero())
		assert.True(t, quote.Total.Equal(d("116.00")))
	})

	t.Run("Should round tax to two decimal places", func(t *testing.T) {
		quote, err := pricing.Calculate(
			[]pricing.LineItem{
				{UnitPrice: d("0.99"), Quantity: 3, Discount: decimal.Zero},
			},
			decimal.Zero, d("10"), vat,
		)
		require.NoError(t, err)
		// 2.97 * 0.16 = 0.4752 -> 0.48
		assert.True(t, quote.TaxAmount.Equal(d("0.48")), "tax = %s", quote.TaxAmount)
		assert.True(t, quote.Total.Equal(d("3.45")))
	})
}

func TestLoyaltyPoints(t *testing.T) {
	divisor := d("100")

	assert.Equal(t, 3, pricing.LoyaltyPoints(d("348.00"), divisor))
	assert.Equal(t, 0, pricing.LoyaltyPoints(d("99.99"), divisor))
	assert.Equal(t, 1, pricing.LoyaltyPoints(d("100.00"), divisor))
	assert.Equal(t, 0, pricing.LoyaltyPoints(d("-17.40"), divisor))
	assert.Equal(t, 0, pricing.LoyaltyPoints(d("500"), decimal.Zero))
}
