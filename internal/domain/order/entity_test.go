//go:build unit

package order_test

import (
	"testing"
	"time"

	"pos-checkout/internal/domain/order"
	"pos-checkout/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.OrderBuilder)
	errIs  error
	total  string
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPendingOrder(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.True(t, decimal.NewFromInt(200).Equal(actual.Total()))
		assert.Equal(t, order.CurrencyKHR, actual.Currency())
		assert.Equal(t, order.StatePending, actual.State())
		assert.Regexp(t, `^INV-\d+-[0-9a-f]{6}$`, actual.BillNumber())
		assert.Equal(t, b.Now, actual.CreatedAt())
		assert.Equal(t, b.Now.Add(5*time.Minute), actual.ExpiresAt())
		assert.Empty(t, actual.Fingerprint())
		assert.Nil(t, actual.Seller())

		require.Len(t, actual.Items(), 1)
		assert.Equal(t, "Nike Air Max", actual.Items()[0].Name)
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "missing customer name",
				mutate: func(b *builder.OrderBuilder) { b.CustomerName = "  " },
				errIs:  order.ErrCustomerRequired,
			},
			{
				name:   "empty cart",
				mutate: func(b *builder.OrderBuilder) { b.WithLines() },
				errIs:  order.ErrEmptyCart,
			},
			{
				name:   "zero quantity",
				mutate: func(b *builder.OrderBuilder) { b.WithLines(order.CartLine{ProductRef: "1", Quantity: 0}) },
				errIs:  order.ErrInvalidQuantity,
			},
			{
				name:   "negative quantity",
				mutate: func(b *builder.OrderBuilder) { b.WithLines(order.CartLine{ProductRef: "1", Quantity: -1}) },
				errIs:  order.ErrInvalidQuantity,
			},
		})
	})

	t.Run("catalog pricing", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name: "multiple lines are summed",
				mutate: func(b *builder.OrderBuilder) {
					b.WithLines(
						order.CartLine{ProductRef: "1", Quantity: 2},
						order.CartLine{ProductRef: "5", Quantity: 1},
					)
				},
				total: "450",
			},
			{
				name: "client price is ignored",
				mutate: func(b *builder.OrderBuilder) {
					b.WithLines(order.CartLine{ProductRef: "1", Quantity: 1, Price: price("1")})
				},
				total: "100",
			},
			{
				name: "unknown products are skipped",
				mutate: func(b *builder.OrderBuilder) {
					b.WithLines(
						order.CartLine{ProductRef: "999", Quantity: 5},
						order.CartLine{ProductRef: "1", Quantity: 1},
					)
				},
				total: "100",
			},
			{
				name:   "only unknown products",
				mutate: func(b *builder.OrderBuilder) { b.WithLines(order.CartLine{ProductRef: "999", Quantity: 1}) },
				errIs:  order.ErrNonPositiveTotal,
			},
		})
	})

	t.Run("client pricing", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name: "trusted price",
				mutate: func(b *builder.OrderBuilder) {
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Name: "Custom", Quantity: 3, Price: price("1500")})
				},
				total: "4500",
			},
			{
				name: "KHR prices round to whole riel",
				mutate: func(b *builder.OrderBuilder) {
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Quantity: 2, Price: price("100.6")})
				},
				total: "202",
			},
			{
				name: "USD prices round to cents",
				mutate: func(b *builder.OrderBuilder) {
					b.Currency = order.CurrencyUSD
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Quantity: 3, Price: price("1.005")})
				},
				total: "3.03",
			},
			{
				name: "missing price",
				mutate: func(b *builder.OrderBuilder) {
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Quantity: 1})
				},
				errIs: order.ErrPriceRequired,
			},
			{
				name: "negative price",
				mutate: func(b *builder.OrderBuilder) {
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Quantity: 1, Price: price("-1")})
				},
				errIs: order.ErrNegativePrice,
			},
			{
				name: "zero total",
				mutate: func(b *builder.OrderBuilder) {
					b.WithClientPricing().WithLines(order.CartLine{ProductRef: "x", Quantity: 1, Price: price("0")})
				},
				errIs: order.ErrNonPositiveTotal,
			},
		})
	})

	t.Run("seller attribution", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Seller = &order.Seller{Name: "Sophea", Role: "cashier"}
		}).BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, o.Seller())
		assert.Equal(t, "Sophea", o.Seller().Name)

		o, err = builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Seller = &order.Seller{}
		}).BuildDomain()
		require.NoError(t, err)
		assert.Nil(t, o.Seller())
	})
}

func TestPendingOrderLifecycle(t *testing.T) {
	t.Run("assign code once", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		assert.ErrorIs(t, o.AssignCode("", "payload"), order.ErrFingerprintRequired)
		require.NoError(t, o.AssignCode("fp-1", "payload"))
		assert.ErrorIs(t, o.AssignCode("fp-2", "payload"), order.ErrFingerprintAssigned)
		assert.Equal(t, "fp-1", o.Fingerprint())
		assert.Equal(t, "payload", o.Payload())
	})

	t.Run("settle once", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		o := b.BuildPending("fp-1")

		settledAt := b.Now.Add(time.Minute)
		require.NoError(t, o.MarkSettled(settledAt))
		assert.Equal(t, order.StateSettled, o.State())
		assert.Equal(t, settledAt, o.SettledAt())

		assert.ErrorIs(t, o.MarkSettled(settledAt.Add(time.Minute)), order.ErrAlreadySettled)
		assert.Equal(t, settledAt, o.SettledAt())
	})

	t.Run("expiry is derived from the clock", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		o := b.BuildPending("fp-1")

		assert.Equal(t, order.StatePending, o.StateAt(b.Now.Add(5*time.Minute)))
		assert.Equal(t, order.StateExpired, o.StateAt(b.Now.Add(5*time.Minute+time.Millisecond)))
		assert.Equal(t, order.StatePending, o.State())

		require.NoError(t, o.MarkSettled(b.Now.Add(10*time.Minute)))
		assert.Equal(t, order.StateSettled, o.StateAt(b.Now.Add(time.Hour)))
	})

	t.Run("snapshot is detached from the order", func(t *testing.T) {
		o := builder.NewOrderBuilder().With(func(b *builder.OrderBuilder) {
			b.Seller = &order.Seller{Name: "Sophea"}
		}).BuildPending("fp-1")

		snap := o.Snapshot()
		snap.Items[0].Quantity = 99
		snap.Seller.Name = "Someone else"

		assert.Equal(t, 2, o.Items()[0].Quantity)
		assert.Equal(t, "Sophea", o.Seller().Name)
		assert.Equal(t, "fp-1", snap.Fingerprint)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewOrderBuilder()
			tc.mutate(b)

			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			if tc.total != "" {
				assert.Equal(t, tc.total, actual.Total().String())
			}
		})
	}
}
