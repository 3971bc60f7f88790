//go:build unit

package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-checkout/cmd/bootstrap"
	"pos-checkout/internal/domain/order"
	"pos-checkout/internal/pkg/config"
	"pos-checkout/internal/usecase/commands"
	"pos-checkout/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestModuleWiring(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var (
		cmds    commands.OrderCommands
		q       queries.CheckoutQueries
		engine  *gin.Engine
		storeDB commands.OrderStore
	)
	app := fxtest.New(t,
		bootstrap.Module,
		fx.Decorate(func(config.Config) config.Config { return config.NewTestConfig() }),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		fx.Populate(&cmds, &q, &engine, &storeDB),
		fx.NopLogger,
	)
	app.RequireStart()
	defer app.RequireStop()

	ctx := context.Background()

	cfg := q.PublicConfig(ctx)
	assert.False(t, cfg.SettlementEnabled)
	assert.Equal(t, order.CurrencyKHR, cfg.Currency)

	products, err := q.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 8)

	result, err := cmds.CreateOrder(ctx, commands.CreateOrderInput{
		Customer: order.Customer{Name: "Dara"},
		Lines:    []order.CartLine{{ProductRef: "1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, commands.CodeModeMock, result.Mode)
	assert.Equal(t, "200", result.Amount.String())
	assert.Equal(t, 1, storeDB.Len())

	status, err := cmds.CheckStatus(ctx, result.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, commands.PaymentPending, status)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckBakongToken(t *testing.T) {
	cfg := config.NewTestConfig()
	assert.NotPanics(t, func() { bootstrap.CheckBakongToken(cfg, discard()) })

	cfg.Bakong.Token = "opaque"
	cfg.Bakong.AccountID = "shop@aclb"
	assert.NotPanics(t, func() { bootstrap.CheckBakongToken(cfg, discard()) })
}
