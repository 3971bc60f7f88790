package order

import (
	"context"
	"errors"
	"log/slog"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/pkg/errs"
)

type PriceResolver interface {
	Resolve(ctx context.Context, lines []CartLine) ([]LineItem, error)
}

type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

// CatalogPriceResolver prices lines from the trusted catalog and ignores any
// client-supplied price. Unknown products are dropped from the order.
type CatalogPriceResolver struct {
	products ProductLookup
	logger   *slog.Logger
}

func NewCatalogPriceResolver(products ProductLookup, logger *slog.Logger) *CatalogPriceResolver {
	return &CatalogPriceResolver{products: products, logger: logger}
}

func (r *CatalogPriceResolver) Resolve(ctx context.Context, lines []CartLine) ([]LineItem, error) {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		product, err := r.products.FindByID(ctx, line.ProductRef)
		if errors.Is(err, catalog.ErrProductNotFound) {
			r.logger.Warn("skipping unknown product", "product_ref", line.ProductRef)
			continue
		}
		if err != nil {
			return nil, errs.Wrap(err, "failed to look up product")
		}
		items = append(items, LineItem{
			ProductRef: product.ID,
			Name:       product.Name,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
		})
	}
	return items, nil
}

// ClientPriceResolver trusts the seller-entered price. This is an explicit
// trust boundary: deployments using it must sit behind an authenticated frontend.
type ClientPriceResolver struct{}

func NewClientPriceResolver() *ClientPriceResolver {
	return &ClientPriceResolver{}
}

func (ClientPriceResolver) Resolve(_ context.Context, lines []CartLine) ([]LineItem, error) {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		if line.Price == nil {
			return nil, ErrPriceRequired
		}
		if line.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		items = append(items, LineItem{
			ProductRef: line.ProductRef,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  *line.Price,
		})
	}
	return items, nil
}
