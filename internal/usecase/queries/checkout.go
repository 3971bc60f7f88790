package queries

//go:generate mockgen -source=checkout.go -destination=../../../tests/mock/queries/checkout.go -package=queriesmock

import (
	"context"
	"time"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/errs"
)

var ErrCatalogUnavailable = errs.New("catalog unavailable")

// PublicConfig holds only non-secret settings the checkout frontend needs.
type PublicConfig struct {
	MerchantName      string
	Currency          order.Currency
	PricingMode       order.PricingMode
	SettlementEnabled bool
	NotifierEnabled   bool
	OrderTTL          time.Duration
}

type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type CheckoutQueries interface {
	PublicConfig(ctx context.Context) PublicConfig
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

type checkoutQueriesImpl struct {
	cfg      PublicConfig
	products ProductLister
}

func NewCheckoutQueries(cfg PublicConfig, products ProductLister) CheckoutQueries {
	return &checkoutQueriesImpl{cfg: cfg, products: products}
}

func (q *checkoutQueriesImpl) PublicConfig(_ context.Context) PublicConfig {
	return q.cfg
}

func (q *checkoutQueriesImpl) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := q.products.List(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrCatalogUnavailable)
	}
	return products, nil
}
