package bootstrap

import (
	"context"
	"log/slog"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/domain/order"
	infracatalog "pos-checkout/internal/infra/catalog"
	"pos-checkout/internal/pkg/config"
	"pos-checkout/internal/usecase/queries"

	"go.uber.org/fx"
)

// ProductSource is any catalog backend that can both price and list products.
type ProductSource interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

var CatalogModule = fx.Module("catalog",
	fx.Provide(
		NewProductSource,
		func(s ProductSource) order.ProductLookup { return s },
		func(s ProductSource) queries.ProductLister { return s },
	),
)

// NewProductSource reads products from Postgres when CATALOG_DSN is set and
// from the YAML catalog otherwise.
func NewProductSource(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (ProductSource, error) {
	if cfg.Catalog.DSN == "" {
		static, err := infracatalog.LoadYAML(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		logger.Info("catalog loaded", "source", "yaml", "file", cfg.Catalog.File, "products", static.Len())
		return static, nil
	}

	pool, cleanup, err := infracatalog.Connect(context.Background(), cfg.Catalog.DSN)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})
	logger.Info("catalog loaded", "source", "postgres")
	return infracatalog.NewPostgresCatalog(pool, logger), nil
}
