package bootstrap

import (
	"pos-checkout/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	CatalogModule,
	TokenCheckModule,
	components.GatewayModule,
	components.UseCaseModule,
	components.HandlerModule,
)
