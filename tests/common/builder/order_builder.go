//go:build unit || e2e

package builder

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/domain/order"
	reqdto "pos-checkout/internal/handler/dto/request"
	infracatalog "pos-checkout/internal/infra/catalog"
	"pos-checkout/internal/pkg/clock"

	"github.com/shopspring/decimal"
)

type OrderBuilder struct {
	CustomerName  string
	CustomerPhone string
	Lines         []order.CartLine
	Seller        *order.Seller
	Products      []catalog.Product
	Pricing       order.PricingMode
	Currency      order.Currency
	TTL           time.Duration
	Now           time.Time
}

// NewOrderBuilder describes the canonical order: two units of product 1 at 100 KHR.
func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		CustomerName:  "Dara",
		CustomerPhone: "012345678",
		Lines: []order.CartLine{
			{ProductRef: "1", Quantity: 2},
		},
		Products: []catalog.Product{
			{ID: "1", Name: "Nike Air Max", Category: "Shoes", Price: decimal.NewFromInt(100)},
			{ID: "5", Name: "Smart Watch Series 7", Category: "Electronics", Price: decimal.NewFromInt(250)},
		},
		Pricing:  order.PricingCatalog,
		Currency: order.CurrencyKHR,
		TTL:      5 * time.Minute,
		Now:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) WithLines(lines ...order.CartLine) *OrderBuilder {
	b.Lines = lines
	return b
}

func (b *OrderBuilder) WithClientPricing() *OrderBuilder {
	b.Pricing = order.PricingClient
	return b
}

// Build methods
func (b *OrderBuilder) BuildServices() *order.Services {
	return b.BuildServicesWithClock(clock.NewMockClock(b.Now))
}

func (b *OrderBuilder) BuildServicesWithClock(clk clock.Clock) *order.Services {
	var prices order.PriceResolver = order.NewClientPriceResolver()
	if b.Pricing == order.PricingCatalog {
		products, err := infracatalog.NewStaticCatalog(b.Products)
		if err != nil {
			panic(err)
		}
		prices = order.NewCatalogPriceResolver(products, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	return &order.Services{
		Clock:         clk,
		PriceResolver: prices,
		BillNumbers:   order.NewTimeBillNumbers(),
		Currency:      b.Currency,
		TTL:           b.TTL,
	}
}

func (b *OrderBuilder) BuildParams() order.NewOrderParams {
	return order.NewOrderParams{
		Customer: order.Customer{Name: b.CustomerName, Phone: b.CustomerPhone},
		Lines:    b.Lines,
		Seller:   b.Seller,
	}
}

func (b *OrderBuilder) BuildDomain() (*order.PendingOrder, error) {
	return order.NewPendingOrder(context.Background(), b.BuildServices(), b.BuildParams())
}

// BuildPending returns a valid order already bound to fingerprint.
func (b *OrderBuilder) BuildPending(fingerprint string) *order.PendingOrder {
	o, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	if err := o.AssignCode(fingerprint, "payload-"+fingerprint); err != nil {
		panic(err)
	}
	return o
}

func (b *OrderBuilder) BuildRequestDTO() reqdto.CreateOrderRequest {
	cart := make([]reqdto.CartItemRequest, 0, len(b.Lines))
	for _, l := range b.Lines {
		cart = append(cart, reqdto.CartItemRequest{
			ID:    reqdto.ProductRef(l.ProductRef),
			Name:  l.Name,
			Qty:   l.Quantity,
			Price: l.Price,
		})
	}
	req := reqdto.CreateOrderRequest{
		Customer: &reqdto.CustomerRequest{Name: b.CustomerName, Phone: b.CustomerPhone},
		Cart:     cart,
	}
	if b.Seller != nil {
		req.Seller = &reqdto.SellerRequest{
			Name:       b.Seller.Name,
			Role:       b.Seller.Role,
			ApprovedBy: b.Seller.ApprovedBy,
		}
	}
	return req
}
