package components

import (
	"context"
	"log/slog"

	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/clock"
	"pos-checkout/internal/pkg/config"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		order.NewTimeBillNumbers,
		fx.As(new(order.BillNumberGenerator)),
	),
	NewPriceResolver,
	NewOrderServices,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewFanout,
		func(f *commands.Fanout) commands.Dispatcher { return f },
		commands.NewResolver,
		commands.NewOrderCommands,
		NewExpirySweeper,
	),
	fx.Invoke(func(*commands.ExpirySweeper) {}),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		NewPublicConfig,
		queries.NewCheckoutQueries,
	),
)

func NewPriceResolver(cfg config.Config, products order.ProductLookup, logger *slog.Logger) (order.PriceResolver, error) {
	mode, err := order.ParsePricingMode(cfg.Merchant.PricingMode)
	if err != nil {
		return nil, err
	}
	if mode == order.PricingClient {
		logger.Warn("client pricing enabled; totals are computed from prices sent by the terminal")
		return order.NewClientPriceResolver(), nil
	}
	return order.NewCatalogPriceResolver(products, logger), nil
}

func NewOrderServices(cfg config.Config, clk clock.Clock, prices order.PriceResolver, bills order.BillNumberGenerator) (*order.Services, error) {
	currency, err := order.ParseCurrency(cfg.Merchant.Currency)
	if err != nil {
		return nil, err
	}
	return &order.Services{
		Clock:         clk,
		PriceResolver: prices,
		BillNumbers:   bills,
		Currency:      currency,
		TTL:           cfg.Order.TTL,
	}, nil
}

func NewFanout(lc fx.Lifecycle, cfg config.Config, b commands.Broadcaster, n commands.MessageNotifier, logger *slog.Logger) *commands.Fanout {
	f := commands.NewFanout(b, n, cfg.Telegram.Timeout, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			f.Wait()
			return nil
		},
	})
	return f
}

// NewExpirySweeper starts the sweep loop when ORDER_SWEEP_INTERVAL is set.
func NewExpirySweeper(lc fx.Lifecycle, cfg config.Config, s commands.OrderStore, clk clock.Clock, logger *slog.Logger) *commands.ExpirySweeper {
	sweeper := commands.NewExpirySweeper(s, clk, cfg.Order.SweepInterval, logger)
	if !sweeper.Enabled() {
		return sweeper
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				sweeper.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
	return sweeper
}

func NewPublicConfig(cfg config.Config, settlement commands.SettlementChecker) (queries.PublicConfig, error) {
	currency, err := order.ParseCurrency(cfg.Merchant.Currency)
	if err != nil {
		return queries.PublicConfig{}, err
	}
	mode, err := order.ParsePricingMode(cfg.Merchant.PricingMode)
	if err != nil {
		return queries.PublicConfig{}, err
	}
	return queries.PublicConfig{
		MerchantName:      cfg.Merchant.Name,
		Currency:          currency,
		PricingMode:       mode,
		SettlementEnabled: settlement.Enabled(),
		NotifierEnabled:   cfg.Telegram.Enabled(),
		OrderTTL:          cfg.Order.TTL,
	}, nil
}
