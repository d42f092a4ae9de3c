// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"retailops/internal/app"
	appctx "retailops/internal/core/context"
	"retailops/internal/infrastructure/http/v1/handlers"
	"retailops/internal/infrastructure/http/v1/middleware"
	"retailops/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Services backing the handlers
	Services *app.Services

	// HealthChecks are pinged by /health/ready (database, cache)
	HealthChecks map[string]handlers.Pinger

	// RequestTimeout bounds every API request; zero disables it
	RequestTimeout time.Duration
}

var (
	anyRole       = []string{appctx.RoleAdmin, appctx.RoleInventory, appctx.RoleCashier}
	inventoryRole = []string{appctx.RoleInventory}
	salesRoles    = []string{appctx.RoleCashier, appctx.RoleInventory}
)

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware (order matters!). Recovery sits inside ErrorHandler so a
	// recovered panic is still rendered.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Timeout(cfg.RequestTimeout))

	baseHandler := handlers.NewBaseHandler()

	// Storefront is public
	storefrontHandler := handlers.NewStorefrontHandler(baseHandler, cfg.Services.Storefront)
	v1.GET("/storefront/products/:id/availability", storefrontHandler.Availability)

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))

	registerItemRoutes(protected, baseHandler, cfg.Services)
	registerStockRoutes(protected, baseHandler, cfg.Services)
	registerProductRoutes(protected, baseHandler, cfg.Services)
	registerOrderRoutes(protected, baseHandler, cfg.Services)
	registerPurchasingRoutes(protected, baseHandler, cfg.Services)

	return router
}

func registerItemRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	h := handlers.NewItemHandler(base, svc.Items, svc.Mirror)
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(inventoryRole...)

	items := rg.Group("/items")
	items.GET("", read, h.List)
	items.POST("", write, h.Create)
	items.GET("/:id", read, h.Get)
	items.PUT("/:id", write, h.Update)
	items.DELETE("/:id", write, h.Delete)
	items.GET("/:id/adjustments", read, h.Adjustments)
	items.GET("/:id/history", read, h.History)
	items.POST("/:id/sync", write, h.Sync)
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	h := handlers.NewStockHandler(base, svc.Stock, svc.Items, svc.Mirror)
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(inventoryRole...)

	stock := rg.Group("/stock")
	stock.POST("/adjustments", write, h.Adjust)
	stock.GET("/adjustments", read, h.ListAdjustments)
	stock.GET("/adjustments/export", read, h.ExportAdjustments)
	stock.POST("/sync", write, h.SyncAll)
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	h := handlers.NewProductHandler(base, svc.Products)
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(inventoryRole...)

	pos := rg.Group("/pos-products")
	pos.GET("", read, h.ListPOS)
	pos.POST("", write, h.CreatePOS)
	pos.GET("/:id", read, h.GetPOS)

	online := rg.Group("/online-products")
	online.GET("", read, h.ListOnline)
	online.POST("", write, h.CreateOnline)
	online.GET("/:id", read, h.GetOnline)
}

func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	h := handlers.NewOrderHandler(base, svc.Sales)
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(salesRoles...)

	orders := rg.Group("/orders")
	orders.GET("", read, h.List)
	orders.POST("", write, h.Create)
	orders.GET("/:id", read, h.Get)
	orders.POST("/:id/cancel", write, h.Cancel)
	orders.POST("/:id/return", write, h.Return)
}

func registerPurchasingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	h := handlers.NewPurchasingHandler(base, svc.Purchasing)
	read := middleware.RequireRole(anyRole...)
	write := middleware.RequireRole(inventoryRole...)

	pos := rg.Group("/purchase-orders")
	pos.GET("", read, h.ListPurchaseOrders)
	pos.POST("", write, h.CreatePurchaseOrder)
	pos.GET("/:id", read, h.GetPurchaseOrder)
	pos.POST("/:id/cancel", write, h.CancelPurchaseOrder)
	pos.POST("/:id/receive", write, h.ReceivePurchaseOrder)

	bills := rg.Group("/bills")
	bills.GET("", read, h.ListBills)
	bills.POST("", write, h.CreateBill)
	bills.GET("/:id", read, h.GetBill)
	bills.POST("/:id/void", write, h.VoidBill)
}
