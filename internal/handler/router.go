package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pos-checkout/internal/handler/api"
	"pos-checkout/internal/handler/middleware"
	"pos-checkout/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, checkoutHandler *api.CheckoutHandler, eventsHandler *api.EventsHandler) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, checkoutHandler, eventsHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger.GetSlogLogger()))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger.GetSlogLogger()))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, checkoutHandler *api.CheckoutHandler, eventsHandler *api.EventsHandler) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	addRoutes(apiGroup, []route{
		{Method: http.MethodPost, Path: "/create-order", Handler: checkoutHandler.CreateOrder},
		{Method: http.MethodPost, Path: "/check-status", Handler: checkoutHandler.CheckStatus},
		{Method: http.MethodGet, Path: "/config", Handler: checkoutHandler.Config},
		{Method: http.MethodGet, Path: "/products", Handler: checkoutHandler.Products},
		{Method: http.MethodGet, Path: "/events", Handler: eventsHandler.Stream},
	})
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
