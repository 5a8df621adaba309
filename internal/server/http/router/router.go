package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/server/http/handlers"
	"github.com/polkiloo/erpcore/internal/server/http/middleware"
	"github.com/polkiloo/erpcore/internal/telemetry"
)

type Params struct {
	fx.In

	Facade  handlers.ERPFacade
	Logger  *zap.Logger
	Metrics *telemetry.Metrics
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger.Named("http")))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	healthHandler := handlers.NewHealthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	payrollHandler := handlers.NewPayrollHandler(p.Facade)

	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(middleware.AuthRequired(p.Facade))

	orders := api.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/search", orderHandler.Search)
	orders.GET("/stats", orderHandler.Stats)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id/status", orderHandler.UpdateStatus)
	orders.PATCH("/:id/payment-status", orderHandler.UpdatePaymentStatus)
	orders.POST("/:id/cancel", orderHandler.Cancel)

	payrolls := api.Group("/payrolls")
	payrolls.POST("", payrollHandler.Create)
	payrolls.GET("", payrollHandler.List)
	payrolls.GET("/stats", payrollHandler.Stats)
	payrolls.POST("/generate", payrollHandler.Generate)
	payrolls.GET("/:id", payrollHandler.Get)
	payrolls.PATCH("/:id", payrollHandler.Update)
	payrolls.DELETE("/:id", payrollHandler.Delete)
	payrolls.POST("/:id/process", payrollHandler.Process)
	payrolls.POST("/:id/pay", payrollHandler.Pay)

	return engine
}
