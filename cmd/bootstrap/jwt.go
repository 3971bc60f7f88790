package bootstrap

import (
	"log/slog"
	"time"

	"pos-checkout/internal/pkg/config"
	"pos-checkout/internal/pkg/errs"
	"pos-checkout/internal/pkg/jwt"

	"go.uber.org/fx"
)

var TokenCheckModule = fx.Module("token-check",
	fx.Invoke(CheckBakongToken),
)

// CheckBakongToken warns at startup when the configured Bakong token is expired
// or about to expire. It never blocks startup.
func CheckBakongToken(cfg config.Config, logger *slog.Logger) {
	if !cfg.Bakong.SettlementEnabled() {
		logger.Info("bakong settlement disabled; payment codes are mock and status stays pending")
		return
	}

	now := time.Now()
	info, err := jwt.Inspect(cfg.Bakong.Token, now)
	switch {
	case errs.Is(err, jwt.ErrExpiredToken):
		logger.Warn("bakong token has expired; settlement checks will fail", "expired_at", *info.ExpiresAt)
	case err != nil:
		logger.Warn("bakong token is not a readable JWT", "error", err)
	case info.ExpiresAt != nil && info.ExpiresAt.Sub(now) < 7*24*time.Hour:
		logger.Warn("bakong token expires soon", "expires_at", *info.ExpiresAt)
	default:
		logger.Info("bakong settlement enabled", "account_id", cfg.Bakong.AccountID)
	}
}
