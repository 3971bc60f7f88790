//go:build unit

package order_test

import (
	"testing"

	"pos-checkout/internal/domain/order"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in    string
		want  order.Currency
		errIs error
	}{
		{in: "KHR", want: order.CurrencyKHR},
		{in: " usd ", want: order.CurrencyUSD},
		{in: "EUR", errIs: order.ErrUnsupportedCurrency},
		{in: "", errIs: order.ErrUnsupportedCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := order.ParseCurrency(tt.in)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "116", order.CurrencyKHR.NumericCode())
	assert.Equal(t, "840", order.CurrencyUSD.NumericCode())
	assert.Equal(t, int32(0), order.CurrencyKHR.Scale())
	assert.Equal(t, int32(2), order.CurrencyUSD.Scale())
}

func TestParsePricingMode(t *testing.T) {
	m, err := order.ParsePricingMode("Client")
	assert.NoError(t, err)
	assert.Equal(t, order.PricingClient, m)

	_, err = order.ParsePricingMode("free")
	assert.ErrorIs(t, err, order.ErrUnsupportedPricingMode)
}

func TestTimeBillNumbers(t *testing.T) {
	g := order.NewTimeBillNumbers()
	a, b := g.Next(1700000000000), g.Next(1700000000000)

	assert.Regexp(t, `^INV-1700000000000-[0-9a-f]{6}$`, a)
	assert.NotEqual(t, a, b)
}
