package components

import (
	"context"
	"log/slog"

	"pos-checkout/internal/infra/bakong"
	"pos-checkout/internal/infra/broadcast"
	"pos-checkout/internal/infra/khqr"
	"pos-checkout/internal/infra/store"
	"pos-checkout/internal/infra/telegram"
	"pos-checkout/internal/pkg/config"
	"pos-checkout/internal/usecase/commands"

	"go.uber.org/fx"
)

const eventBuffer = 16

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			store.NewMemoryOrderStore,
			fx.As(new(commands.OrderStore)),
		),
		fx.Annotate(
			NewCodeGenerator,
			fx.As(new(commands.CodeGenerator)),
		),
		fx.Annotate(
			NewBakongClient,
			fx.As(new(commands.SettlementChecker)),
		),
		fx.Annotate(
			NewTelegramNotifier,
			fx.As(new(commands.MessageNotifier)),
		),
		NewHub,
		func(h *broadcast.Hub) commands.Broadcaster { return h },
	),
)

func NewCodeGenerator(cfg config.Config, logger *slog.Logger) *khqr.Generator {
	return khqr.NewGenerator(khqr.MerchantInfo{
		AccountID:     cfg.Bakong.AccountID,
		MerchantID:    cfg.Merchant.MerchantID,
		AcquiringBank: cfg.Merchant.AcquiringBank,
		Name:          cfg.Merchant.Name,
		City:          cfg.Merchant.City,
		StoreLabel:    cfg.Merchant.StoreLabel,
		TerminalLabel: cfg.Merchant.TerminalLabel,
	}, cfg.Bakong.SettlementEnabled(), logger)
}

func NewBakongClient(cfg config.Config, logger *slog.Logger) *bakong.Client {
	return bakong.NewClient(bakong.Config{
		APIURL:             cfg.Bakong.APIURL,
		Token:              cfg.Bakong.Token,
		MerchantID:         cfg.Bakong.AccountID,
		Timeout:            cfg.Bakong.Timeout,
		RatePerSecond:      cfg.Bakong.RatePerSecond,
		Burst:              cfg.Bakong.Burst,
		BreakerMaxFailures: cfg.Bakong.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Bakong.BreakerOpenTimeout,
	}, cfg.Bakong.SettlementEnabled(), logger)
}

func NewTelegramNotifier(cfg config.Config, logger *slog.Logger) *telegram.Notifier {
	if !cfg.Telegram.Enabled() {
		logger.Info("telegram notifier disabled")
	}
	return telegram.NewNotifier(telegram.Config{
		APIURL:   cfg.Telegram.APIURL,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  cfg.Telegram.Timeout,
	}, cfg.Telegram.Enabled(), logger)
}

func NewHub(lc fx.Lifecycle, logger *slog.Logger) *broadcast.Hub {
	hub := broadcast.NewHub(eventBuffer, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}
