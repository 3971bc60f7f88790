package components

import (
	"time"

	"pos-checkout/internal/handler"
	"pos-checkout/internal/handler/api"
	"pos-checkout/internal/infra/broadcast"

	"go.uber.org/fx"
)

const eventsKeepAlive = 15 * time.Second

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		func(hub *broadcast.Hub) *api.EventsHandler {
			return api.NewEventsHandler(hub, eventsKeepAlive)
		},
	),
	fx.Invoke(handler.NewRouter),
)
